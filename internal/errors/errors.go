package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth service
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrDuplicateIdentity  = errors.New("identity already registered")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUnsupportedToken = errors.New("unsupported token")
	ErrMalformedClaims  = errors.New("malformed token claims")

	// Session errors
	ErrNoActiveSession = errors.New("no active session")

	// Verification errors
	ErrCodeNotFound = errors.New("verification code not found")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")

	// Mail errors
	ErrMailSend = errors.New("failed to send email")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
