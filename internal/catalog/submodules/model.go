package submodules

import (
	"time"

	"github.com/google/uuid"
)

// SubModule subdivides a module. It carries a denormalized channel id that
// always matches its parent module's channel.
type SubModule struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ModuleID  uuid.UUID `json:"module_id"`
	Module    string    `json:"module"`
	ChannelID uuid.UUID `json:"channel_id"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
