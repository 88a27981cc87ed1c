package channels

import (
	"time"

	"github.com/google/uuid"
)

// Channel is an access surface (Web, Mobile, API). Permissions are scoped
// per channel, so the same role can see different modules on each.
type Channel struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
