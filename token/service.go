package token

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/users"
)

// Token is the credential handed to clients. The refresh token never
// appears here: it lives only in the session store, where its presence
// authorizes renewal.
type Token struct {
	GrantType   string `json:"grantType,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Status classifies the outcome of inspecting a raw token.
type Status int

const (
	StatusInvalid Status = iota
	StatusValid
	StatusExpired
)

// Inspection is the result of the lenient parse path. For StatusExpired
// the claims are still populated: renewal legitimately needs to read the
// identity out of an expired token.
type Inspection struct {
	Status Status
	Claims *Claims
}

type Service struct {
	signer             Signer
	sessions           SessionRepo
	userRepo           users.Repo
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ServiceOption func(*Service)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessTokenExpiry = accessTokenExpiry
		s.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

func New(signer Signer, sessions SessionRepo, userRepo users.Repo, options ...ServiceOption) *Service {
	s := &Service{
		signer:   signer,
		sessions: sessions,
		userRepo: userRepo,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.accessTokenExpiry == 0 {
		s.accessTokenExpiry = 30 * time.Minute
	}
	if s.refreshTokenExpiry == 0 {
		s.refreshTokenExpiry = 8 * time.Hour
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}
	return s
}

// Issue creates an access/refresh token pair for an identity and
// unconditionally overwrites the identity's session record with the new
// refresh token. Only one session per identity is ever live.
func (s *Service) Issue(ctx context.Context, identity string, roles []string) (*Token, error) {
	now := s.nowFunc()

	accessToken, err := s.signer.Sign(jwt.MapClaims{
		"sub":      identity,
		rolesClaim: strings.Join(roles, ","),
		"exp":      now.Add(s.accessTokenExpiry).Unix(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Service.Issue access token")
	}

	refreshToken, err := s.signer.Sign(jwt.MapClaims{
		"exp": now.Add(s.refreshTokenExpiry).Unix(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Service.Issue refresh token")
	}

	if err := s.sessions.Set(ctx, identity, refreshToken, s.refreshTokenExpiry); err != nil {
		return nil, errors.Wrap(err, "Service.Issue session record")
	}

	return &Token{
		GrantType:   "Bearer",
		AccessToken: accessToken,
	}, nil
}

// Validate checks a raw access token purely cryptographically: signature
// and expiry, never a store lookup. ErrTokenExpired is the one failure a
// client is expected to recover from, by calling renewal.
func (s *Service) Validate(raw string) (*Claims, error) {
	parsed, err := jwt.Parse(raw, s.signer.GetVerificationKey, jwt.WithTimeFunc(s.nowFunc))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperrors.ErrInvalidToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperrors.ErrInvalidToken
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, apperrors.ErrUnsupportedToken
		default:
			return nil, apperrors.ErrInvalidToken
		}
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrMalformedClaims
	}
	return claimsFromMap(mapClaims)
}

// Inspect parses a raw token without rejecting on expiry. The signature
// must still verify: an expired token is readable, a forged one is not.
// This is a separate path from Validate so "expired but readable" is a
// first-class outcome rather than an error to catch.
func (s *Service) Inspect(raw string) Inspection {
	claims, err := s.Validate(raw)
	if err == nil {
		return Inspection{Status: StatusValid, Claims: claims}
	}
	if !errors.Is(err, apperrors.ErrTokenExpired) {
		return Inspection{Status: StatusInvalid}
	}

	parsed, err := jwt.Parse(raw, s.signer.GetVerificationKey, jwt.WithoutClaimsValidation())
	if err != nil {
		return Inspection{Status: StatusInvalid}
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Inspection{Status: StatusInvalid}
	}
	expired, err := claimsFromMap(mapClaims)
	if err != nil {
		return Inspection{Status: StatusInvalid}
	}
	return Inspection{Status: StatusExpired, Claims: expired}
}

// Renew exchanges a possibly expired access token for a fresh one,
// provided a live session record exists for its identity. Roles are read
// fresh from the user store, not from the stale claims. An absent record
// is a normal outcome: the caller must require a new login, not retry.
func (s *Service) Renew(ctx context.Context, raw string) (*Token, error) {
	insp := s.Inspect(raw)
	if insp.Status == StatusInvalid {
		return nil, apperrors.ErrInvalidToken
	}
	identity := insp.Claims.Identity

	refreshToken, err := s.sessions.Get(ctx, identity)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, identity)
	if err != nil {
		return nil, errors.Wrap(err, "Service.Renew user lookup")
	}

	accessToken, err := s.signer.Sign(jwt.MapClaims{
		"sub":      identity,
		rolesClaim: strings.Join(user.Roles(), ","),
		"exp":      s.nowFunc().Add(s.accessTokenExpiry).Unix(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Service.Renew access token")
	}

	// Renewal re-arms the session record with a full TTL. The refresh
	// token value itself is unchanged.
	if err := s.sessions.Set(ctx, identity, refreshToken, s.refreshTokenExpiry); err != nil {
		return nil, errors.Wrap(err, "Service.Renew session record")
	}

	return &Token{
		GrantType:   "Bearer",
		AccessToken: accessToken,
	}, nil
}

// Revoke deletes the identity's session record, blocking all future
// renewals. Any unexpired access token dies on its own schedule.
// Revoking an absent identity is a no-op.
func (s *Service) Revoke(ctx context.Context, identity string) error {
	return s.sessions.Delete(ctx, identity)
}
