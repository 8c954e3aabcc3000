package server

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/users"
	"github.com/penlight/auth-server/verification"
)

type sendAuthCodeRequest struct {
	UserID string `json:"userId"`
}

type verifyRequest struct {
	AuthEmail string `json:"authEmail"`
	AuthCode  string `json:"authCode"`
}

type signupRequest struct {
	UserID       string `json:"userId"`
	UserPassword string `json:"userPassword"`
	UserName     string `json:"userName"`
}

type loginRequest struct {
	UserID       string `json:"userId"`
	UserPassword string `json:"userPassword"`
}

type tokenResponse struct {
	GrantType    string `json:"grantType,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

const (
	invalidCredentialsMessage = "Authentication failed."
	invalidEmailMessage       = "The ID must be in the form of an email."
)

// SendAuthCodeHandler starts registration: it answers whether the email
// is usable and, when it is, stores and mails a verification code.
// The response is boolean: true = code sent, false = invalid or taken.
func (s *Server) SendAuthCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendAuthCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, false)
			return
		}

		err := s.verification.RequestCode(r.Context(), req.UserID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, true)
		case apperrors.Is(err, apperrors.ErrInvalidEmail):
			writeJSON(w, http.StatusBadRequest, false)
		case apperrors.Is(err, apperrors.ErrDuplicateIdentity):
			writeJSON(w, http.StatusOK, false)
		default:
			s.logger.Error().Err(err).Msg("send-auth-code failed")
			writeJSON(w, http.StatusInternalServerError, false)
		}
	}
}

// VerifyHandler checks a submitted code against the stored record.
func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, false)
			return
		}

		match, err := s.verification.VerifyCode(r.Context(), req.AuthEmail, req.AuthCode)
		if err != nil {
			s.logger.Error().Err(err).Msg("verify failed")
			writeJSON(w, http.StatusInternalServerError, false)
			return
		}
		writeJSON(w, http.StatusOK, match)
	}
}

// SignupHandler persists a new account with a bcrypt-hashed password.
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, false)
			return
		}

		hash, err := users.HashPassword(req.UserPassword)
		if err != nil {
			s.logger.Error().Err(err).Msg("signup password hash failed")
			writeJSON(w, http.StatusInternalServerError, false)
			return
		}

		err = s.userRepo.Create(r.Context(), users.New(req.UserID, hash, req.UserName))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, true)
		case apperrors.Is(err, apperrors.ErrDuplicateIdentity):
			writeJSON(w, http.StatusBadRequest, false)
		default:
			s.logger.Error().Err(err).Msg("signup failed")
			writeJSON(w, http.StatusInternalServerError, false)
		}
	}
}

// LoginHandler checks credentials and issues a token pair. The access
// token travels both as an HttpOnly cookie and in the response body; the
// refresh token stays server-side.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, tokenResponse{ErrorMessage: invalidCredentialsMessage})
			return
		}

		if !verification.IsValidEmail(req.UserID) {
			writeJSON(w, http.StatusBadRequest, tokenResponse{ErrorMessage: invalidEmailMessage})
			return
		}

		user, err := s.authenticate(r.Context(), req.UserID, req.UserPassword)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, tokenResponse{ErrorMessage: invalidCredentialsMessage})
			return
		}

		issued, err := s.tokens.Issue(r.Context(), user.Email, user.Roles())
		if err != nil {
			s.logger.Error().Err(err).Msg("login token issue failed")
			writeJSON(w, http.StatusInternalServerError, tokenResponse{ErrorMessage: invalidCredentialsMessage})
			return
		}

		s.SetAccessTokenCookie(w, r, issued.AccessToken)
		writeJSON(w, http.StatusOK, tokenResponse{
			GrantType:   issued.GrantType,
			AccessToken: issued.AccessToken,
		})
	}
}

// authenticate resolves a login credential pair to a user. An unknown
// identity and a wrong password both come back as ErrInvalidCredentials:
// the caller never learns which half failed.
func (s *Server) authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !users.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// AccessTokenHandler renews an access token off the existing, possibly
// expired, cookie credential. No live session record means the client
// has to log in again.
func (s *Server) AccessTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := extractAccessToken(r)
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		renewed, err := s.tokens.Renew(r.Context(), raw)
		switch {
		case err == nil:
			s.SetAccessTokenCookie(w, r, renewed.AccessToken)
			writeJSON(w, http.StatusOK, tokenResponse{
				GrantType:   renewed.GrantType,
				AccessToken: renewed.AccessToken,
			})
		case apperrors.Is(err, apperrors.ErrNoActiveSession):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no_active_session"})
		case apperrors.Is(err, apperrors.ErrInvalidToken):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		default:
			s.logger.Error().Err(err).Msg("access token renewal failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		}
	}
}

// LogoutHandler revokes the session record and expires the cookie. It
// succeeds regardless of credential state: logging out twice is fine.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := extractAccessToken(r)
		if raw != "" {
			if insp := s.tokens.Inspect(raw); insp.Claims != nil {
				if err := s.tokens.Revoke(r.Context(), insp.Claims.Identity); err != nil {
					s.logger.Error().Err(err).Msg("logout revoke failed")
				}
			}
			s.ExpireAccessTokenCookie(w)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
