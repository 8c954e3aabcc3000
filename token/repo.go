package token

import (
	"context"
	"time"
)

// SessionRepo is the server-side session record store. One record per
// identity: the value is the refresh token currently authorizing renewal
// for that identity. Records expire on their own after their TTL.
type SessionRepo interface {
	// Set writes or overwrites the session record for an identity
	Set(ctx context.Context, identity, value string, ttl time.Duration) error

	// Get returns the current record value, or ErrNoActiveSession
	Get(ctx context.Context, identity string) (string, error)

	// Delete removes the record. Deleting an absent record is a no-op
	Delete(ctx context.Context, identity string) error
}
