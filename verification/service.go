package verification

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/users"
)

// MailSender delivers a verification code to an address.
type MailSender interface {
	SendVerificationCode(email, code string) error
}

// Service runs the one-time code lifecycle that gatekeeps registration.
type Service struct {
	repo     Repo
	userRepo users.Repo
	mail     MailSender
	logger   zerolog.Logger
}

func NewService(repo Repo, userRepo users.Repo, mail MailSender, logger zerolog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] verification repo is required")
	}
	if userRepo == nil {
		return nil, errors.New("[NewService] user repo is required")
	}
	if mail == nil {
		return nil, errors.New("[NewService] mail sender is required")
	}
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		mail:     mail,
		logger:   logger,
	}, nil
}

// RequestCode generates, stores and mails a verification code for an
// email that is not yet registered. The call succeeds once the record is
// persisted; the mail send runs afterwards and a failure there is a
// server-side problem, never a signal about the code itself.
func (s *Service) RequestCode(ctx context.Context, email string) error {
	if !IsValidEmail(email) {
		return apperrors.ErrInvalidEmail
	}

	count, err := s.userRepo.CountByEmail(ctx, email)
	if err != nil {
		return errors.Wrap(err, "Service.RequestCode duplicate check")
	}
	if count > 0 {
		return apperrors.ErrDuplicateIdentity
	}

	code, err := NewCode(email)
	if err != nil {
		return errors.Wrap(err, "Service.RequestCode")
	}

	if err := s.repo.Upsert(ctx, code); err != nil {
		return errors.Wrap(err, "Service.RequestCode persist")
	}

	go func() {
		if err := s.mail.SendVerificationCode(code.Email, code.Code); err != nil {
			s.logger.Error().Err(err).Str("email", code.Email).Msg("failed to send verification code email")
		}
	}()

	return nil
}

// VerifyCode reports whether a stored record exists with the exact
// (email, code) pair. The record is not consumed.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (bool, error) {
	_, err := s.repo.GetByEmailAndCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrCodeNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "Service.VerifyCode")
	}
	return true, nil
}
