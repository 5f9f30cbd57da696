package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/app/types"

	"github.com/sirupsen/logrus"
)

const resetTokenBytes = 32

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RequestPasswordReset replaces any outstanding token for the email with a new
// one and mails the reset link. The row is only committed once the mail was
// handed to the transport.
func (s *userAuthService) RequestPasswordReset(ctx context.Context, req *types.RequestPasswordResetRequest) error {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := s.resetTokenGen()
	if err != nil {
		return err
	}

	now := s.now()
	resetToken := &entity.PasswordResetToken{
		Email:     user.Email,
		Token:     token,
		ExpiresAt: now.Add(s.cfg.Tokens.ResetTTL),
		CreatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txResetRepo := repository.NewPasswordResetTokenRepository(tx)
	if err = txResetRepo.DeleteByEmail(ctx, user.Email); err != nil {
		return err
	}
	if err = txResetRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	link := passwordResetLink(s.cfg.FrontendURL, token)
	if err = s.mailer.Send(ctx, user.Email, passwordResetSubject, passwordResetBody(link, s.cfg.Tokens.ResetTTL)); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Error("Failed to send password reset email")
		return fmt.Errorf("%w: %w", ErrEmailDeliveryFailed, err)
	}

	return tx.Commit()
}

// ResetPassword consumes a reset token. Expired tokens are left in place for
// the reaper.
func (s *userAuthService) ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txResetRepo := repository.NewPasswordResetTokenRepository(tx)
	resetToken, err := txResetRepo.FindByTokenForUpdate(ctx, req.Token)
	if err != nil {
		return err
	}
	if resetToken == nil {
		return ErrInvalidToken
	}

	if !s.now().Before(resetToken.ExpiresAt) {
		return ErrTokenExpired
	}

	if err = s.cfg.Password.Policy.Validate(req.NewPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	txUserRepo := repository.NewUserRepository(tx)
	user, err := txUserRepo.FindByEmail(ctx, resetToken.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidToken
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	if err = txUserRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	deleted, err := txResetRepo.DeleteByToken(ctx, req.Token)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrInvalidToken
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	s.invalidate(ctx, user.Email)
	return nil
}

func (s *userAuthService) ReapExpiredResetTokens(ctx context.Context) (int64, error) {
	return s.resetTokenRepo.DeleteExpired(ctx, s.now())
}
