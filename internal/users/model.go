package users

import (
	"time"

	"github.com/google/uuid"
)

// User is the admin-facing account shape. PasswordHash never leaves the
// repository layer; the JSON tag keeps it out of every response.
type User struct {
	ID           uuid.UUID     `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	PasswordHash string        `json:"-"`
	RoleID       uuid.NullUUID `json:"role_id"`
	Role         string        `json:"role"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewUser carries the fields accepted on create.
type NewUser struct {
	Username string
	Email    string
	Phone    string
	Password string
	RoleID   uuid.NullUUID
}

// UpdateUser carries the mutable fields. A nil Password leaves the stored
// hash untouched.
type UpdateUser struct {
	Email    string
	Phone    string
	Password *string
}
