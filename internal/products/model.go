package products

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a sellable item tied to one category.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CategoryID  uuid.UUID `json:"category_id"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProduct carries the fields accepted on create.
type NewProduct struct {
	Name        string
	Description string
	Price       float64
	CategoryID  uuid.UUID
}
