package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/app/types"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/sirupsen/logrus"
)

const TokenTypeBearer = "bearer"

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error
	UpdateAvatar(ctx context.Context, userID uint64, avatarURL string) error
	UpdateRole(ctx context.Context, userID uint64, role string) error
}

type resetTokenRepository interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// EmailSender delivers a plain text message.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AvatarUploader stores image bytes and returns their public URL.
type AvatarUploader interface {
	Upload(ctx context.Context, data []byte, identifier, contentType string) (string, error)
}

type UserAuthService interface {
	Signup(ctx context.Context, req *types.SignupRequest) (*entity.User, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error)
	ChangePassword(ctx context.Context, user *dto.UserSnapshot, req *types.ChangePasswordRequest) error
	RequestPasswordReset(ctx context.Context, req *types.RequestPasswordResetRequest) error
	ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) error
	ReapExpiredResetTokens(ctx context.Context) (int64, error)
	UpdateAvatar(ctx context.Context, user *dto.UserSnapshot, data []byte, contentType string) (*entity.User, error)
	SetRole(ctx context.Context, email, role string) (*entity.User, error)
}

type UserAuthServiceOption func(*userAuthService)

type userAuthService struct {
	db             *sql.DB
	userRepo       userRepository
	resetTokenRepo resetTokenRepository
	hasher         *PasswordHasher
	tokens         *TokenService
	cache          IdentityCache
	mailer         EmailSender
	avatars        AvatarUploader
	cfg            *config.Config
	now            func() time.Time
	resetTokenGen  func() (string, error)
}

func NewUserAuthService(
	db *sql.DB,
	userRepo userRepository,
	resetTokenRepo resetTokenRepository,
	hasher *PasswordHasher,
	tokens *TokenService,
	cache IdentityCache,
	mailer EmailSender,
	avatars AvatarUploader,
	cfg *config.Config,
	opts ...UserAuthServiceOption,
) UserAuthService {
	svc := &userAuthService{
		db:             db,
		userRepo:       userRepo,
		resetTokenRepo: resetTokenRepo,
		hasher:         hasher,
		tokens:         tokens,
		cache:          cache,
		mailer:         mailer,
		avatars:        avatars,
		cfg:            cfg,
		now:            time.Now,
		resetTokenGen:  newResetToken,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithClock(now func() time.Time) UserAuthServiceOption {
	return func(s *userAuthService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithResetTokenGenerator(gen func() (string, error)) UserAuthServiceOption {
	return func(s *userAuthService) {
		if gen != nil {
			s.resetTokenGen = gen
		}
	}
}

func (s *userAuthService) Signup(ctx context.Context, req *types.SignupRequest) (*entity.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if err = s.cfg.Password.Policy.Validate(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &entity.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsVerified:   false,
		Role:         entity.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err = s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return user, nil
}

func (s *userAuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.burn(req.Password)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	accessToken, _, err := s.tokens.Issue(user.Email, 0)
	if err != nil {
		return nil, err
	}

	return &types.LoginResponse{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(s.tokens.DefaultTTL().Seconds()),
	}, nil
}

func (s *userAuthService) ChangePassword(ctx context.Context, caller *dto.UserSnapshot, req *types.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, caller.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !s.hasher.Verify(req.OldPassword, user.PasswordHash) {
		return ErrPasswordMismatch
	}

	if err = s.cfg.Password.Policy.Validate(req.NewPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	if err = s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	s.invalidate(ctx, user.Email)
	return nil
}

func (s *userAuthService) UpdateAvatar(ctx context.Context, caller *dto.UserSnapshot, data []byte, contentType string) (*entity.User, error) {
	avatarURL, err := s.avatars.Upload(ctx, data, strconv.FormatUint(caller.ID, 10), contentType)
	if err != nil {
		return nil, err
	}

	if err = s.userRepo.UpdateAvatar(ctx, caller.ID, avatarURL); err != nil {
		return nil, err
	}
	s.invalidate(ctx, caller.Email)

	user, err := s.userRepo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userAuthService) SetRole(ctx context.Context, email, role string) (*entity.User, error) {
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err = s.userRepo.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.Email)

	user.Role = role
	return user, nil
}

// invalidate drops the cached snapshot after a user write. A stale entry still
// expires with its ttl.
func (s *userAuthService) invalidate(ctx context.Context, email string) {
	if err := s.cache.Delete(ctx, email); err != nil {
		logrus.WithError(err).WithField("email", email).Error("Failed to invalidate identity cache entry")
	}
}
