package redisrepo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/token"
)

var _ token.SessionRepo = (*SessionRepo)(nil)

// SessionRepo keeps session records in Redis, keyed by identity. TTL
// eviction is native: an expired record is simply gone.
type SessionRepo struct {
	client *redis.Client
}

func NewSessionRepo(client *redis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

// NewClient dials Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

func (r *SessionRepo) Set(ctx context.Context, identity, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, identity, value, ttl).Err(); err != nil {
		return errors.Wrapf(apperrors.ErrStoreUnavailable, "SessionRepo.Set: %v", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, identity string) (string, error) {
	value, err := r.client.Get(ctx, identity).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.ErrNoActiveSession
		}
		return "", errors.Wrapf(apperrors.ErrStoreUnavailable, "SessionRepo.Get: %v", err)
	}
	return value, nil
}

func (r *SessionRepo) Delete(ctx context.Context, identity string) error {
	if err := r.client.Del(ctx, identity).Err(); err != nil {
		return errors.Wrapf(apperrors.ErrStoreUnavailable, "SessionRepo.Delete: %v", err)
	}
	return nil
}
