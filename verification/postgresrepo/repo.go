package postgresrepo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/verification"
)

var _ verification.Repo = (*CodeRepo)(nil)

// CodeRepo persists verification codes in the email_auth table.
type CodeRepo struct {
	db *sql.DB
}

func NewCodeRepo(db *sql.DB) *CodeRepo {
	return &CodeRepo{db: db}
}

func (r *CodeRepo) Upsert(ctx context.Context, code *verification.Code) error {
	const query = `
		INSERT INTO email_auth (auth_email, auth_code, auth_status)
		VALUES ($1, $2, $3)
		ON CONFLICT (auth_email)
		DO UPDATE SET auth_code = EXCLUDED.auth_code, auth_status = EXCLUDED.auth_status`

	if _, err := r.db.ExecContext(ctx, query, code.Email, code.Code, code.Status); err != nil {
		return errors.Wrap(err, "CodeRepo.Upsert")
	}
	return nil
}

func (r *CodeRepo) GetByEmailAndCode(ctx context.Context, email, code string) (*verification.Code, error) {
	const query = `
		SELECT auth_email, auth_code, auth_status
		FROM email_auth
		WHERE auth_email = $1 AND auth_code = $2`

	var c verification.Code
	err := r.db.QueryRowContext(ctx, query, email, code).Scan(&c.Email, &c.Code, &c.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrCodeNotFound
		}
		return nil, errors.Wrap(err, "CodeRepo.GetByEmailAndCode")
	}
	return &c, nil
}
