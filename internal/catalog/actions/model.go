package actions

import (
	"time"

	"github.com/google/uuid"
)

// Action is a verb that can be granted, e.g. Create or View.
type Action struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
