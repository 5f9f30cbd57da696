package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"

	"github.com/sirupsen/logrus"
)

// IdentityCache holds user snapshots keyed by email. Implementations must
// reject entries without a positive ttl.
type IdentityCache interface {
	Get(ctx context.Context, key string) (*dto.UserSnapshot, bool, error)
	Set(ctx context.Context, key string, snapshot *dto.UserSnapshot, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// Guard turns a bearer token into the caller's identity.
type Guard struct {
	tokens *TokenService
	users  userFinder
	cache  IdentityCache
	ttl    time.Duration
}

func NewGuard(tokens *TokenService, users userFinder, cache IdentityCache, ttl time.Duration) *Guard {
	return &Guard{
		tokens: tokens,
		users:  users,
		cache:  cache,
		ttl:    ttl,
	}
}

// Resolve verifies the token and loads the user it names, preferring the cache.
// Every failure is reported as ErrUnauthenticated.
func (g *Guard) Resolve(ctx context.Context, token string) (*dto.UserSnapshot, error) {
	email, err := g.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	snapshot, ok, err := g.cache.Get(ctx, email)
	if err != nil {
		logrus.WithError(err).WithField("email", email).Warn("Identity cache read failed, falling back to database")
		ok = false
	}

	if !ok {
		user, err := g.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrUserNotFound)
		}

		snapshot = dto.NewUserSnapshot(user)
		if err = g.cache.Set(ctx, email, snapshot, g.ttl); err != nil {
			logrus.WithError(err).WithField("email", email).Warn("Identity cache write failed")
		}
	}

	if !snapshot.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, ErrAccountDisabled)
	}

	return snapshot, nil
}

// RequireRole rejects users whose role is not role.
func (g *Guard) RequireRole(user *dto.UserSnapshot, role string) error {
	if user == nil || user.Role != role {
		return ErrForbidden
	}
	return nil
}
