package verification

import (
	"crypto/rand"
	"math/big"
	"regexp"

	"github.com/pkg/errors"
)

// CodeStatus records whether a code has been consumed. Codes are written
// pending and currently stay pending after a successful verify; the
// column exists so single-use enforcement can be added without a schema
// change.
type CodeStatus string

const (
	CodeStatusPending CodeStatus = "N"
	CodeStatusUsed    CodeStatus = "Y"
)

const codeLength = 6

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

// Code is a pending email verification record. At most one per email:
// requesting a new code supersedes the old record.
type Code struct {
	Email  string     `json:"authEmail,omitempty"`
	Code   string     `json:"authCode,omitempty"`
	Status CodeStatus `json:"-"`
}

// NewCode builds a pending record with a freshly generated code.
func NewCode(email string) (*Code, error) {
	code, err := GenerateCode()
	if err != nil {
		return nil, err
	}
	return &Code{
		Email:  email,
		Code:   code,
		Status: CodeStatusPending,
	}, nil
}

// IsValidEmail performs the structural email check used before any store
// write.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailPattern.MatchString(email)
}

// GenerateCode produces a fixed-length numeric code from crypto/rand.
func GenerateCode() (string, error) {
	digits := make([]byte, codeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", errors.Wrap(err, "GenerateCode")
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
