package roles

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named permission group. A user holds at most one role.
type Role struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
