package fakecoderepo

import (
	"context"
	"sync"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/verification"
)

var _ verification.Repo = (*FakeCodeRepo)(nil)

type FakeCodeRepo struct {
	byEmail map[string]*verification.Code
	lock    sync.RWMutex
}

func NewFakeCodeRepo() *FakeCodeRepo {
	return &FakeCodeRepo{
		byEmail: make(map[string]*verification.Code),
	}
}

func (r *FakeCodeRepo) Upsert(_ context.Context, code *verification.Code) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	copied := *code
	r.byEmail[code.Email] = &copied
	return nil
}

func (r *FakeCodeRepo) GetByEmailAndCode(_ context.Context, email, code string) (*verification.Code, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.byEmail[email]
	if !ok || rec.Code != code {
		return nil, apperrors.ErrCodeNotFound
	}
	copied := *rec
	return &copied, nil
}

// Stored returns the pending code for an email, if any. Test helper.
func (r *FakeCodeRepo) Stored(email string) (*verification.Code, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rec, ok := r.byEmail[email]
	if !ok {
		return nil, false
	}
	copied := *rec
	return &copied, true
}
