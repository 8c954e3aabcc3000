package postgresrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/users"
)

const uniqueViolation = "23505"

var _ users.Repo = (*UserRepo)(nil)

// UserRepo persists user accounts in Postgres.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	const query = `
		INSERT INTO users (email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Role, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.ErrDuplicateIdentity
		}
		return errors.Wrap(err, "UserRepo.Create")
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	const query = `
		SELECT id, email, password_hash, name, role, created_at
		FROM users
		WHERE email = $1`

	var u users.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "UserRepo.GetByEmail")
	}
	return &u, nil
}

func (r *UserRepo) CountByEmail(ctx context.Context, email string) (int64, error) {
	const query = `SELECT COUNT(1) FROM users WHERE email = $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "UserRepo.CountByEmail")
	}
	return count, nil
}
