package modules

import (
	"time"

	"github.com/google/uuid"
)

// Module is a top-level feature area scoped to one channel. The list and
// detail shapes embed the channel name and the live sub-modules so the
// admin UI can render the hierarchy in one call.
type Module struct {
	ID         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	ChannelID  uuid.UUID          `json:"channel_id"`
	Channel    string             `json:"channel"`
	SubModules []SubModuleSummary `json:"sub_modules"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// SubModuleSummary is the embedded sub-module shape.
type SubModuleSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
