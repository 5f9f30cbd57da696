package service_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/cache"
	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret = "test-secret"

	insertUserQuery          = `(?s)INSERT INTO users \(email, password_hash, is_active, is_verified, role, avatar_url, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?\)`
	findUserByEmailQuery     = `(?s)SELECT id, email, password_hash, is_active, is_verified, role, avatar_url, created_at, updated_at\s+FROM users WHERE email = \?`
	findUserByIDQuery        = `(?s)SELECT id, email, password_hash, is_active, is_verified, role, avatar_url, created_at, updated_at\s+FROM users WHERE id = \?`
	updatePasswordQuery      = `UPDATE users SET password_hash = \?, updated_at = \? WHERE id = \?`
	updateAvatarQuery        = `UPDATE users SET avatar_url = \?, updated_at = \? WHERE id = \?`
	updateRoleQuery          = `UPDATE users SET role = \?, updated_at = \? WHERE id = \?`
	insertResetTokenQuery    = `(?s)INSERT INTO password_reset_tokens \(email, token, expires_at, created_at\)\s+VALUES \(\?, \?, \?, \?\)`
	findResetTokenForUpdate  = `(?s)SELECT id, email, token, expires_at, created_at\s+FROM password_reset_tokens WHERE token = \? FOR UPDATE`
	deleteResetTokenQuery    = `DELETE FROM password_reset_tokens WHERE token = \?`
	deleteResetByEmailQuery  = `DELETE FROM password_reset_tokens WHERE email = \?`
	deleteExpiredResetTokens = `DELETE FROM password_reset_tokens WHERE expires_at <= \?`
)

var (
	userColumns = []string{
		"id",
		"email",
		"password_hash",
		"is_active",
		"is_verified",
		"role",
		"avatar_url",
		"created_at",
		"updated_at",
	}
	resetTokenColumns = []string{
		"id",
		"email",
		"token",
		"expires_at",
		"created_at",
	}
)

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeUploader struct {
	url         string
	identifier  string
	contentType string
	err         error
}

func (u *fakeUploader) Upload(_ context.Context, _ []byte, identifier, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.identifier = identifier
	u.contentType = contentType
	return u.url, nil
}

// failingCache errors on every call.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (*dto.UserSnapshot, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, *dto.UserSnapshot, time.Duration) error {
	return errors.New("cache down")
}

func (failingCache) Delete(context.Context, string) error {
	return errors.New("cache down")
}

// captureString matches any string argument and records it.
type captureString struct {
	value *string
}

func (c captureString) Match(v driver.Value) bool {
	s, ok := v.(string)
	if ok {
		*c.value = s
	}
	return ok
}

type testEnv struct {
	svc    service.UserAuthService
	mock   sqlmock.Sqlmock
	cache  *cache.Memory
	mailer *fakeMailer
	avatar *fakeUploader
	hasher *service.PasswordHasher
	now    time.Time
}

func testConfig(policy config.PasswordPolicy) *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:         testSecret,
			AccessTokenTTL: time.Hour,
		},
		Cache: config.CacheConfig{
			TTL: 10 * time.Minute,
		},
		Tokens: config.TokenConfig{
			ResetTTL: 30 * time.Minute,
		},
		Password: config.PasswordConfig{
			Policy:   policy,
			HashCost: bcrypt.MinCost,
		},
		FrontendURL: "http://frontend.test",
	}
}

func newServiceWithMock(t *testing.T, opts ...service.UserAuthServiceOption) (*testEnv, func()) {
	t.Helper()

	return newServiceWithMockAndPolicy(t, config.PasswordPolicy{MinLength: 1}, opts...)
}

func newServiceWithMockAndPolicy(t *testing.T, policy config.PasswordPolicy, opts ...service.UserAuthServiceOption) (*testEnv, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	cfg := testConfig(policy)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	env := &testEnv{
		mock:   mock,
		cache:  cache.NewMemory(func() time.Time { return now }),
		mailer: &fakeMailer{},
		avatar: &fakeUploader{url: "https://cdn.test/avatars/1.png"},
		hasher: service.NewPasswordHasher(cfg.Password.HashCost),
		now:    now,
	}

	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, service.WithTokenClock(func() time.Time { return now }))
	allOpts := append([]service.UserAuthServiceOption{service.WithClock(func() time.Time { return now })}, opts...)
	env.svc = service.NewUserAuthService(
		db,
		repository.NewUserRepository(db),
		repository.NewPasswordResetTokenRepository(db),
		env.hasher,
		tokens,
		env.cache,
		env.mailer,
		env.avatar,
		cfg,
		allOpts...,
	)

	return env, func() { _ = db.Close() }
}

func (e *testEnv) hash(t *testing.T, plain string) string {
	t.Helper()

	digest, err := e.hasher.Hash(plain)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return digest
}

func userRow(id uint64, email, passwordHash string, active bool, role string) *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userColumns).AddRow(id, email, passwordHash, active, false, role, nil, now, now)
}

func expectMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
