package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/entity"
)

type PasswordResetTokenRepository struct {
	db DBTX
}

func NewPasswordResetTokenRepository(db DBTX) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

func (r *PasswordResetTokenRepository) Create(ctx context.Context, token *entity.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (email, token, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		token.Email,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return translateError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	token.ID = uint64(id)
	return nil
}

// FindByTokenForUpdate locks the row; callers must run it inside a transaction.
func (r *PasswordResetTokenRepository) FindByTokenForUpdate(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	query := `
		SELECT id, email, token, expires_at, created_at
		FROM password_reset_tokens WHERE token = ? FOR UPDATE
	`
	rt := &entity.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&rt.ID,
		&rt.Email,
		&rt.Token,
		&rt.ExpiresAt,
		&rt.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *PasswordResetTokenRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE token = ?`
	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PasswordResetTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM password_reset_tokens WHERE email = ?`
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at <= ?`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
