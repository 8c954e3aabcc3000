package server

import (
	"context"
	"net/http"

	apperrors "github.com/penlight/auth-server/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyIdentity stores the authenticated identity (login email)
	ContextKeyIdentity ContextKey = "identity"
	// ContextKeyRoles stores the authenticated roles
	ContextKeyRoles ContextKey = "roles"
)

// AuthGate is the per-request authentication gate. Bypass paths pass
// through untouched. Elsewhere a missing credential means an anonymous
// request, not a rejected one: route-level authorization is a downstream
// concern, the gate only populates identity when it can. A credential
// that is present but fails validation terminates the request here; an
// expired token gets a distinguishable response so the client knows to
// renew rather than re-login.
func (s *Server) AuthGate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := gateBypassPaths[r.URL.Path]; ok {
			next(w, r)
			return
		}

		raw := extractAccessToken(r)
		if raw == "" {
			next(w, r)
			return
		}

		claims, err := s.tokens.Validate(raw)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrTokenExpired) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token_expired"})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyIdentity, claims.Identity)
		ctx = context.WithValue(ctx, ContextKeyRoles, claims.Roles)
		next(w, r.WithContext(ctx))
	}
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(ContextKeyIdentity).(string)
	return identity, ok
}

// RolesFromContext returns the authenticated roles, if any.
func RolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(ContextKeyRoles).([]string)
	return roles, ok
}
