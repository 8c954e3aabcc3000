package fakesessionrepo

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/token"
)

var _ token.SessionRepo = (*FakeSessionRepo)(nil)

type record struct {
	value     string
	expiresAt time.Time
}

// FakeSessionRepo is an in-memory session store for tests. Expiry falls
// out of the deadline check on read rather than a background sweeper.
type FakeSessionRepo struct {
	records map[string]record
	nowFunc func() time.Time
	lock    sync.RWMutex
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		records: make(map[string]record),
		nowFunc: time.Now,
	}
}

// SetNowFunc injects a clock so tests can step past TTLs.
func (r *FakeSessionRepo) SetNowFunc(now func() time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nowFunc = now
}

func (r *FakeSessionRepo) Set(_ context.Context, identity, value string, ttl time.Duration) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.records[identity] = record{
		value:     value,
		expiresAt: r.nowFunc().Add(ttl),
	}
	return nil
}

func (r *FakeSessionRepo) Get(_ context.Context, identity string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.records[identity]
	if !ok || r.nowFunc().After(rec.expiresAt) {
		return "", apperrors.ErrNoActiveSession
	}
	return rec.value, nil
}

func (r *FakeSessionRepo) Delete(_ context.Context, identity string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	delete(r.records, identity)
	return nil
}
