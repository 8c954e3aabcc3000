package users

import "context"

type Repo interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
}
