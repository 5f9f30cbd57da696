package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/middleware"
	"github.com/vibast-solutions/ms-go-contacts/app/types"

	"github.com/labstack/echo/v4"
)

type fakeUserAuthService struct {
	signup               func(ctx context.Context, req *types.SignupRequest) (*entity.User, error)
	login                func(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error)
	changePassword       func(ctx context.Context, user *dto.UserSnapshot, req *types.ChangePasswordRequest) error
	requestPasswordReset func(ctx context.Context, req *types.RequestPasswordResetRequest) error
	resetPassword        func(ctx context.Context, req *types.ResetPasswordRequest) error
	updateAvatar         func(ctx context.Context, user *dto.UserSnapshot, data []byte, contentType string) (*entity.User, error)
	setRole              func(ctx context.Context, email, role string) (*entity.User, error)
}

func (f *fakeUserAuthService) Signup(ctx context.Context, req *types.SignupRequest) (*entity.User, error) {
	return f.signup(ctx, req)
}

func (f *fakeUserAuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	return f.login(ctx, req)
}

func (f *fakeUserAuthService) ChangePassword(ctx context.Context, user *dto.UserSnapshot, req *types.ChangePasswordRequest) error {
	return f.changePassword(ctx, user, req)
}

func (f *fakeUserAuthService) RequestPasswordReset(ctx context.Context, req *types.RequestPasswordResetRequest) error {
	return f.requestPasswordReset(ctx, req)
}

func (f *fakeUserAuthService) ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) error {
	return f.resetPassword(ctx, req)
}

func (f *fakeUserAuthService) ReapExpiredResetTokens(context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeUserAuthService) UpdateAvatar(ctx context.Context, user *dto.UserSnapshot, data []byte, contentType string) (*entity.User, error) {
	return f.updateAvatar(ctx, user, data, contentType)
}

func (f *fakeUserAuthService) SetRole(ctx context.Context, email, role string) (*entity.User, error) {
	return f.setRole(ctx, email, role)
}

func newJSONContext(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
	}

	e := echo.New()
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withUser(ctx echo.Context, user *dto.UserSnapshot) echo.Context {
	ctx.Set(middleware.ContextKeyUser, user)
	return ctx
}

func testUser() *dto.UserSnapshot {
	return &dto.UserSnapshot{
		ID:       1,
		Email:    "user@example.com",
		Role:     entity.RoleUser,
		IsActive: true,
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode failed: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (body %q)", status, rec.Code, rec.Body.String())
	}
}
