package rbac

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidInput indicates a malformed mutator call, rejected before any
// transaction is opened.
var ErrInvalidInput = errors.New("rbac: role and channel are required")

const replaceTimeout = 15 * time.Second

// Store is the persistence contract for the permission table and the
// catalogs the tree builder reads.
type Store interface {
	GrantFinder

	ListModules(ctx context.Context, channelID uuid.UUID) ([]Module, error)
	ListSubModules(ctx context.Context, channelID uuid.UUID) ([]SubModule, error)
	ListActions(ctx context.Context) ([]Action, error)

	ListGrants(ctx context.Context, roleID, channelID uuid.UUID) ([]Grant, error)
	ReplaceGrants(ctx context.Context, roleID, channelID uuid.UUID, grants []Grant) error
	ListGrantGroups(ctx context.Context, roleID uuid.NullUUID) ([]GrantGroup, error)
	ListRolesOnChannels(ctx context.Context) ([]RoleOnChannel, error)
}

// Service orchestrates permission tree reads and matrix replacement.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// BuildPermissionTree materialises the checkbox tree for one role+channel
// pair. A missing role or channel yields an empty tree rather than an error;
// the matrix cannot be computed without both, and absence is a valid result.
func (s *Service) BuildPermissionTree(ctx context.Context, roleID, channelID uuid.UUID) ([]ModuleNode, error) {
	if roleID == uuid.Nil || channelID == uuid.Nil {
		return []ModuleNode{}, nil
	}

	modules, err := s.store.ListModules(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return []ModuleNode{}, nil
	}
	subModules, err := s.store.ListSubModules(ctx, channelID)
	if err != nil {
		return nil, err
	}
	actions, err := s.store.ListActions(ctx)
	if err != nil {
		return nil, err
	}
	grants, err := s.store.ListGrants(ctx, roleID, channelID)
	if err != nil {
		return nil, err
	}

	return BuildTree(modules, subModules, actions, grants), nil
}

// GrantInput is one matrix row as submitted by the administration UI: a
// module (optionally one of its sub-modules) with the checked action ids.
type GrantInput struct {
	ModuleID    uuid.UUID     `json:"module_id"`
	SubModuleID uuid.NullUUID `json:"sub_module_id"`
	ChannelID   uuid.UUID     `json:"channel_id"`
	Actions     []uuid.UUID   `json:"actions"`
}

// ReplacePermissions swaps the entire grant set for one (role, channel) pair:
// flatten the UI payload to one row per action, then delete-and-bulk-insert
// inside a single transaction. Each row is stamped with the call's role and
// channel regardless of what the per-item payload carried.
//
// The transaction is detached from the caller's cancellation once validated:
// a client disconnect mid-replace must not leave the matrix half revoked.
func (s *Service) ReplacePermissions(ctx context.Context, roleID, channelID uuid.UUID, inputs []GrantInput) error {
	if roleID == uuid.Nil || channelID == uuid.Nil {
		return ErrInvalidInput
	}
	grants := make([]Grant, 0, len(inputs))
	for _, in := range inputs {
		if in.ModuleID == uuid.Nil {
			return ErrInvalidInput
		}
		for _, actionID := range in.Actions {
			if actionID == uuid.Nil {
				return ErrInvalidInput
			}
			grants = append(grants, Grant{
				ModuleID:    in.ModuleID,
				SubModuleID: in.SubModuleID,
				ChannelID:   channelID,
				RoleID:      roleID,
				ActionID:    actionID,
			})
		}
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replaceTimeout)
	defer cancel()
	return s.store.ReplaceGrants(ctx, roleID, channelID, grants)
}

// ListGrants exposes the stored grant tuples for one (role, channel) pair.
func (s *Service) ListGrants(ctx context.Context, roleID, channelID uuid.UUID) ([]Grant, error) {
	return s.store.ListGrants(ctx, roleID, channelID)
}

// Permissions returns the grouped grant listing, optionally filtered by role.
func (s *Service) Permissions(ctx context.Context, roleID uuid.NullUUID) ([]GrantGroup, error) {
	return s.store.ListGrantGroups(ctx, roleID)
}

// RolesOnChannels lists the (role, channel) pairs that hold any grant.
func (s *Service) RolesOnChannels(ctx context.Context) ([]RoleOnChannel, error) {
	return s.store.ListRolesOnChannels(ctx)
}
