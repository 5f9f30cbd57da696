package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrForbidden           = errors.New("insufficient permissions")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials: %w", ErrUnauthenticated)
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrContactNotFound     = errors.New("contact not found")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrPasswordMismatch    = errors.New("old password is incorrect")
	ErrWeakPassword        = errors.New("password does not meet policy requirements")
	ErrEmailDeliveryFailed = errors.New("failed to deliver email")
	ErrInvalidRole         = errors.New("invalid role")
)
