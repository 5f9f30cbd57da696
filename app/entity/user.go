package entity

import (
	"database/sql"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	Role         string
	AvatarURL    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PasswordResetToken struct {
	ID        uint64
	Email     string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
