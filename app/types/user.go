package types

import (
	"github.com/vibast-solutions/ms-go-contacts/app/dto"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
)

func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
		Role:       user.Role,
		AvatarURL:  user.AvatarURL.String,
	}
}

func NewUserResponseFromSnapshot(user *dto.UserSnapshot) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		IsActive:   user.IsActive,
		IsVerified: user.IsVerified,
		Role:       user.Role,
		AvatarURL:  user.AvatarURL,
	}
}
