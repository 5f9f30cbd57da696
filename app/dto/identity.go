package dto

import (
	"github.com/vibast-solutions/ms-go-contacts/app/entity"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UserSnapshot is the denormalized view of a user kept in the identity cache
// and handed to request handlers once a bearer token has been resolved.
type UserSnapshot struct {
	ID           uint64 `json:"id" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	PasswordHash string `json:"password_hash" validate:"required"`
	AvatarURL    string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Role         string `json:"role" validate:"required,oneof=user admin"`
	IsActive     bool   `json:"is_active"`
	IsVerified   bool   `json:"is_verified"`
}

func NewUserSnapshot(user *entity.User) *UserSnapshot {
	return &UserSnapshot{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		AvatarURL:    user.AvatarURL.String,
		Role:         user.Role,
		IsActive:     user.IsActive,
		IsVerified:   user.IsVerified,
	}
}

func (s *UserSnapshot) Validate() error {
	return validate.Struct(s)
}
