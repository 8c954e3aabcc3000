package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/users"
)

const rolesClaim = "roles"

// Claims is what an access token asserts about its bearer.
type Claims struct {
	Identity  string
	Roles     []string
	ExpiresAt time.Time
}

// claimsFromMap converts raw JWT claims into Claims. The roles claim is
// a comma-joined string; a token without a subject or without the roles
// claim is treated as garbled.
func claimsFromMap(mc jwt.MapClaims) (*Claims, error) {
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, apperrors.ErrMalformedClaims
	}

	rolesRaw, ok := mc[rolesClaim]
	if !ok {
		return nil, apperrors.ErrMalformedClaims
	}

	rolesStr, _ := rolesRaw.(string)
	var roles []string
	if rolesStr == "" {
		roles = []string{users.RoleDefault}
	} else {
		roles = strings.Split(rolesStr, ",")
	}

	claims := &Claims{
		Identity: sub,
		Roles:    roles,
	}
	if exp, _ := mc["exp"].(float64); exp != 0 {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return claims, nil
}
