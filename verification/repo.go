package verification

import "context"

// Repo persists pending verification codes. Email is unique per record:
// Upsert replaces whatever code was pending for that address.
type Repo interface {
	Upsert(ctx context.Context, code *Code) error

	// GetByEmailAndCode returns the record matching the exact pair, or
	// ErrCodeNotFound
	GetByEmailAndCode(ctx context.Context, email, code string) (*Code, error)
}
