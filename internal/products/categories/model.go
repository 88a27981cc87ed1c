package categories

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for navigation and filtering.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
