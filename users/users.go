package users

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleDefault is assigned to accounts created through self-service signup.
const RoleDefault = "USER"

type User struct {
	ID           int64     `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"` // Login identifier
	PasswordHash string    `json:"-"`               // Never serialize
	Name         string    `json:"name,omitempty"`
	Role         string    `json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// New creates a user with creation-time defaults applied. Defaults are
// computed here rather than by store hooks so a User is complete the
// moment it exists.
func New(email, passwordHash, name string) *User {
	return &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleDefault,
		CreatedAt:    time.Now(),
	}
}

// Roles returns the user's roles as a list. The store keeps a single
// role string per account.
func (u *User) Roles() []string {
	if u.Role == "" {
		return []string{RoleDefault}
	}
	return []string{u.Role}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
