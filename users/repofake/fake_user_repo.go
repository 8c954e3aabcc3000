package fakeuserrepo

import (
	"context"
	"sync"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	byEmail map[string]*users.User
	nextID  int64
	lock    sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byEmail: make(map[string]*users.User),
		nextID:  1,
	}
}

func (r *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return apperrors.ErrDuplicateIdentity
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *FakeUserRepo) CountByEmail(_ context.Context, email string) (int64, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if _, ok := r.byEmail[email]; ok {
		return 1, nil
	}
	return 0, nil
}

// SetRole replaces the stored role for a user. Test helper.
func (r *FakeUserRepo) SetRole(email, role string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if user, ok := r.byEmail[email]; ok {
		user.Role = role
	}
}
