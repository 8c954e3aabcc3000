package config

import (
	"encoding/base64"
	"os"
	"time"

	"github.com/pkg/errors"
)

type SecurityConfig interface {
	GetSigningSecret() ([]byte, error)
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSigningSecret returns the symmetric signing key. The environment
// variable holds the key base64-encoded.
func (Security) GetSigningSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, errors.Wrap(err, "JWT_SECRET is not valid base64")
	}
	return key, nil
}

func (Security) GetAccessTokenExpiry() time.Duration {
	return getDurationEnv("ACCESS_TOKEN_EXPIRY", 30*time.Minute)
}

func (Security) GetRefreshTokenExpiry() time.Duration {
	return getDurationEnv("REFRESH_TOKEN_EXPIRY", 8*time.Hour)
}

func getDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
