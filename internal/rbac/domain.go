package rbac

import (
	"context"

	"github.com/google/uuid"
)

// Catalog name constants used by route requirements. These mirror the seed
// data; the permission matrix itself stays data-driven.
const (
	ActionCreate = "Create"
	ActionView   = "View"
	ActionUpdate = "Update"
	ActionDelete = "Delete"

	RoleSuperAdmin = "Super Admin"
	RoleAdmin      = "Admin"
	RoleDeveloper  = "Developer"
	RoleUser       = "User"

	ModuleUserManagement = "User Management"
	ModuleProduct        = "Product"

	SubModuleUser            = "User"
	SubModuleUserRoleAssign  = "User Role Assign"
	SubModuleProduct         = "Product"
	SubModuleProductCategory = "Product Category"

	ChannelWeb    = "Web"
	ChannelMobile = "Mobile"
	ChannelAPI    = "API"
)

// Action is a permitted verb from the action catalog.
type Action struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Channel is an access surface that scopes permissions independently.
type Channel struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Role is a named permission group. Users hold at most one role.
type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Module is a top-level feature area belonging to one channel.
type Module struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ChannelID uuid.UUID `json:"channel_id"`
}

// SubModule is an optional subdivision of a module. ChannelID is a
// denormalized copy of the parent module's channel.
type SubModule struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ModuleID  uuid.UUID `json:"module_id"`
	ChannelID uuid.UUID `json:"channel_id"`
}

// Grant is one permission row: the role may perform the action on the
// module (or its sub-module) within the channel. SubModuleID is unset for
// modules without sub-modules.
type Grant struct {
	ModuleID    uuid.UUID
	SubModuleID uuid.NullUUID
	ChannelID   uuid.UUID
	RoleID      uuid.UUID
	ActionID    uuid.UUID
}

// GrantGroup is the grouped listing shape: one entry per
// (module, sub-module, role, channel) with the granted actions aggregated.
type GrantGroup struct {
	ModuleID    uuid.UUID     `json:"module_id"`
	Module      string        `json:"module"`
	SubModuleID uuid.NullUUID `json:"sub_module_id"`
	SubModule   string        `json:"sub_module"`
	RoleID      uuid.UUID     `json:"role_id"`
	Role        string        `json:"role"`
	ChannelID   uuid.UUID     `json:"channel_id"`
	Channel     string        `json:"channel"`
	Actions     []Action      `json:"actions"`
}

// RoleOnChannel marks a (role, channel) pair that has at least one grant.
type RoleOnChannel struct {
	RoleID    uuid.UUID `json:"role_id"`
	Role      string    `json:"role"`
	ChannelID uuid.UUID `json:"channel_id"`
	Channel   string    `json:"channel"`
}

// ActionNode is a leaf of the permission tree.
type ActionNode struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Checked bool      `json:"checked"`
}

// SubModuleNode carries the action checkboxes for one sub-module. Checked is
// an any-grant indicator, not a fully-granted one.
type SubModuleNode struct {
	ID      uuid.UUID    `json:"id"`
	Name    string       `json:"name"`
	Checked bool         `json:"checked"`
	Actions []ActionNode `json:"actions"`
}

// ModuleNode is one entry of the permission tree. Exactly one of SubModules
// and Actions is populated: modules with catalog sub-modules nest their
// actions under them, modules without expose a flat action list.
type ModuleNode struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Checked    bool            `json:"checked"`
	SubModules []SubModuleNode `json:"sub_modules"`
	Actions    []ActionNode    `json:"actions"`
}

// Identity describes the authenticated actor as seen by the evaluator.
type Identity struct {
	UserID   uuid.UUID
	Username string
	RoleID   uuid.NullUUID
	RoleName string
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context, nil when absent.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
