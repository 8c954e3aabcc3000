package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/penlight/auth-server/internal/config"
	"github.com/penlight/auth-server/server"
	"github.com/penlight/auth-server/token"
	fakesessionrepo "github.com/penlight/auth-server/token/repofake"
	"github.com/penlight/auth-server/users"
	fakeuserrepo "github.com/penlight/auth-server/users/repofake"
	"github.com/penlight/auth-server/verification"
	fakecoderepo "github.com/penlight/auth-server/verification/repofakes"
)

const (
	testEmail    = "jane.doe@example.com"
	testPassword = "Password123"
)

type nopMailSender struct{}

func (nopMailSender) SendVerificationCode(string, string) error { return nil }

type testFixture struct {
	server   *server.Server
	sessions *fakesessionrepo.FakeSessionRepo
	userRepo *fakeuserrepo.FakeUserRepo
	codeRepo *fakecoderepo.FakeCodeRepo
	tokens   *token.Service
	now      time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		sessions: fakesessionrepo.NewFakeSessionRepo(),
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		codeRepo: fakecoderepo.NewFakeCodeRepo(),
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	f.tokens = token.New(
		token.NewHMACSigner([]byte("test-signing-key")),
		f.sessions,
		f.userRepo,
		token.WithNowFunc(func() time.Time { return f.now }),
	)
	f.sessions.SetNowFunc(func() time.Time { return f.now })

	verificationSvc, err := verification.NewService(f.codeRepo, f.userRepo, nopMailSender{}, zerolog.Nop())
	require.NoError(t, err)

	f.server, err = server.New(config.New(), f.tokens, verificationSvc, f.userRepo, zerolog.Nop())
	require.NoError(t, err)
	return f
}

func (f *testFixture) createUser(t *testing.T) {
	t.Helper()
	hash, err := users.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Create(context.Background(), users.New(testEmail, hash, "Jane Doe")))
}

func (f *testFixture) postJSON(path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func accessTokenCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "accessToken" {
			return c
		}
	}
	t.Fatal("no accessToken cookie in response")
	return nil
}

func (f *testFixture) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec := f.postJSON("/auth/login", map[string]string{
		"userId":       testEmail,
		"userPassword": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return accessTokenCookie(t, rec)
}

func TestLoginSetsCookieAndReturnsToken(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)

	rec := f.postJSON("/auth/login", map[string]string{
		"userId":       testEmail,
		"userPassword": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Bearer", body["grantType"])
	require.NotEmpty(t, body["accessToken"])

	cookie := accessTokenCookie(t, rec)
	require.Equal(t, body["accessToken"], cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, "/", cookie.Path)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)

	rec := f.postJSON("/auth/login", map[string]string{
		"userId":       testEmail,
		"userPassword": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsNonEmailIdentifier(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postJSON("/auth/login", map[string]string{
		"userId":       "not-an-email",
		"userPassword": testPassword,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignupThenLogin(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postJSON("/auth/signup", map[string]string{
		"userId":       testEmail,
		"userPassword": testPassword,
		"userName":     "Jane Doe",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", strings.TrimSpace(rec.Body.String()))

	f.login(t)
}

func TestSignupRejectsDuplicate(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)

	rec := f.postJSON("/auth/signup", map[string]string{
		"userId":       testEmail,
		"userPassword": testPassword,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendAuthCodeAndVerifyFlow(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postJSON("/auth/send-auth-code", map[string]string{"userId": testEmail})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", strings.TrimSpace(rec.Body.String()))

	stored, ok := f.codeRepo.Stored(testEmail)
	require.True(t, ok)

	rec = f.postJSON("/auth/verify", map[string]string{
		"authEmail": testEmail,
		"authCode":  stored.Code,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", strings.TrimSpace(rec.Body.String()))

	rec = f.postJSON("/auth/verify", map[string]string{
		"authEmail": testEmail,
		"authCode":  "000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "false", strings.TrimSpace(rec.Body.String()))
}

func TestSendAuthCodeRejectsRegisteredEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)

	rec := f.postJSON("/auth/send-auth-code", map[string]string{"userId": testEmail})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "false", strings.TrimSpace(rec.Body.String()))
}

func TestRenewalWithExpiredCookie(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)
	cookie := f.login(t)

	f.now = f.now.Add(time.Hour) // access token expired, session record live

	rec := f.postJSON("/auth/access-token", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["accessToken"])
	require.NotEqual(t, cookie.Value, body["accessToken"])
}

func TestRenewalAfterLogoutReturnsNoActiveSession(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)
	cookie := f.login(t)

	rec := f.postJSON("/auth/logout", nil, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.postJSON("/auth/access-token", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "no_active_session", body["error"])
}

func TestRenewalWithoutCredential(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.postJSON("/auth/access-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateRejectsExpiredCredential(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)
	cookie := f.login(t)

	f.now = f.now.Add(time.Hour) // past access expiry, session record live

	rec := f.postJSON("/auth/logout", nil, cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "token_expired", body["error"])
}

func TestGateRejectsForgedCredential(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)
	cookie := f.login(t)

	rec := f.postJSON("/auth/logout", nil, &http.Cookie{Name: "accessToken", Value: "garbage"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "unauthorized", body["error"])

	// Session record untouched: the rejected request never reached the
	// revoke handler, so the real cookie still renews.
	rec = f.postJSON("/auth/access-token", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutExpiresCookie(t *testing.T) {
	f := setupTestFixture(t)
	f.createUser(t)
	cookie := f.login(t)

	rec := f.postJSON("/auth/logout", nil, cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	expired := accessTokenCookie(t, rec)
	require.Empty(t, expired.Value)
	require.Negative(t, expired.MaxAge)
}
