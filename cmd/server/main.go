package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/penlight/auth-server/email"
	"github.com/penlight/auth-server/internal/config"
	"github.com/penlight/auth-server/server"
	"github.com/penlight/auth-server/token"
	"github.com/penlight/auth-server/token/redisrepo"
	"github.com/penlight/auth-server/users/postgresrepo"
	"github.com/penlight/auth-server/verification"
	codesrepo "github.com/penlight/auth-server/verification/postgresrepo"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	secret, err := c.GetSigningSecret()
	if err != nil {
		return fmt.Errorf("config.GetSigningSecret: %w", err)
	}

	ctx := context.Background()
	redisClient, err := redisrepo.NewClient(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
	if err != nil {
		return fmt.Errorf("redisrepo.NewClient: %w", err)
	}
	defer redisClient.Close()

	db, err := sql.Open("postgres", c.GetPostgresDSN())
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.PingContext: %w", err)
	}

	userRepo := postgresrepo.NewUserRepo(db)
	codeRepo := codesrepo.NewCodeRepo(db)
	sessionRepo := redisrepo.NewSessionRepo(redisClient)

	tokens := token.New(token.NewHMACSigner(secret), sessionRepo, userRepo,
		token.WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()))

	mailSender, err := email.NewSMTPSender(c)
	if err != nil {
		return fmt.Errorf("email.NewSMTPSender: %w", err)
	}

	verificationSvc, err := verification.NewService(codeRepo, userRepo, mailSender, logger)
	if err != nil {
		return fmt.Errorf("verification.NewService: %w", err)
	}

	srv, err := server.New(c, tokens, verificationSvc, userRepo, logger)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
