package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated account record, joined with its role name.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	RoleID       uuid.NullUUID
	RoleName     string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
