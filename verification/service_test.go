package verification_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	apperrors "github.com/penlight/auth-server/internal/errors"
	"github.com/penlight/auth-server/users"
	fakeuserrepo "github.com/penlight/auth-server/users/repofake"
	"github.com/penlight/auth-server/verification"
	fakecoderepo "github.com/penlight/auth-server/verification/repofakes"
)

const testEmail = "new.user@example.com"

type fakeMailSender struct {
	sent chan string // codes handed to the sender
	lock sync.Mutex
	fail error
}

func newFakeMailSender() *fakeMailSender {
	return &fakeMailSender{sent: make(chan string, 8)}
}

func (m *fakeMailSender) SendVerificationCode(_ string, code string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent <- code
	return nil
}

func setup(t *testing.T) (*verification.Service, *fakecoderepo.FakeCodeRepo, *fakeuserrepo.FakeUserRepo, *fakeMailSender) {
	t.Helper()

	codeRepo := fakecoderepo.NewFakeCodeRepo()
	userRepo := fakeuserrepo.NewFakeUserRepo()
	mail := newFakeMailSender()

	svc, err := verification.NewService(codeRepo, userRepo, mail, zerolog.Nop())
	require.NoError(t, err)
	return svc, codeRepo, userRepo, mail
}

func TestRequestCodePersistsAndMails(t *testing.T) {
	svc, codeRepo, _, mail := setup(t)

	require.NoError(t, svc.RequestCode(context.Background(), testEmail))

	stored, ok := codeRepo.Stored(testEmail)
	require.True(t, ok)
	require.Len(t, stored.Code, 6)
	require.Equal(t, verification.CodeStatusPending, stored.Status)

	select {
	case sent := <-mail.sent:
		require.Equal(t, stored.Code, sent)
	case <-time.After(time.Second):
		t.Fatal("verification email was never handed to the sender")
	}
}

func TestRequestCodeRejectsMalformedEmailWithoutPersisting(t *testing.T) {
	svc, codeRepo, _, _ := setup(t)

	err := svc.RequestCode(context.Background(), "not-an-email")
	require.ErrorIs(t, err, apperrors.ErrInvalidEmail)

	_, ok := codeRepo.Stored("not-an-email")
	require.False(t, ok)

	match, err := svc.VerifyCode(context.Background(), "not-an-email", "123456")
	require.NoError(t, err)
	require.False(t, match)
}

func TestRequestCodeRejectsRegisteredIdentity(t *testing.T) {
	svc, _, userRepo, _ := setup(t)

	hash, err := users.HashPassword("Password123")
	require.NoError(t, err)
	require.NoError(t, userRepo.Create(context.Background(), users.New(testEmail, hash, "Existing")))

	err = svc.RequestCode(context.Background(), testEmail)
	require.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)
}

func TestRequestCodeSucceedsWhenMailSendFails(t *testing.T) {
	svc, codeRepo, _, mail := setup(t)
	mail.fail = apperrors.ErrMailSend

	require.NoError(t, svc.RequestCode(context.Background(), testEmail))

	_, ok := codeRepo.Stored(testEmail)
	require.True(t, ok)
}

func TestVerifyCodeMatchesExactPairOnly(t *testing.T) {
	svc, codeRepo, _, _ := setup(t)

	require.NoError(t, svc.RequestCode(context.Background(), testEmail))
	stored, ok := codeRepo.Stored(testEmail)
	require.True(t, ok)

	match, err := svc.VerifyCode(context.Background(), testEmail, stored.Code)
	require.NoError(t, err)
	require.True(t, match)

	match, err = svc.VerifyCode(context.Background(), testEmail, "000000")
	require.NoError(t, err)
	require.False(t, match)

	match, err = svc.VerifyCode(context.Background(), "other@example.com", stored.Code)
	require.NoError(t, err)
	require.False(t, match)
}

func TestSecondRequestSupersedesFirstCode(t *testing.T) {
	svc, codeRepo, _, _ := setup(t)

	require.NoError(t, svc.RequestCode(context.Background(), testEmail))
	first, ok := codeRepo.Stored(testEmail)
	require.True(t, ok)

	// Codes are random; retry the request until the stored code changes
	// or give up after a few rounds.
	var second *verification.Code
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RequestCode(context.Background(), testEmail))
		second, ok = codeRepo.Stored(testEmail)
		require.True(t, ok)
		if second.Code != first.Code {
			break
		}
	}
	require.NotEqual(t, first.Code, second.Code)

	match, err := svc.VerifyCode(context.Background(), testEmail, first.Code)
	require.NoError(t, err)
	require.False(t, match)
}

func TestGenerateCodeIsSixDigits(t *testing.T) {
	for i := 0; i < 32; i++ {
		code, err := verification.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			require.True(t, c >= '0' && c <= '9')
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	require.True(t, verification.IsValidEmail("a.b+c@example.co"))
	require.False(t, verification.IsValidEmail(""))
	require.False(t, verification.IsValidEmail("no-at-sign"))
	require.False(t, verification.IsValidEmail("spaces in@example.com"))
}
