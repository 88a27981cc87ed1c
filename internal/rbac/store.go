package rbac

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/argus-admin/argus-admin/internal/platform/db"
)

// PGStore implements Store against PostgreSQL. Every read joins its catalog
// referents and filters soft-deleted rows, so dangling permission rows are
// treated as ungranted rather than surfaced as errors.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore backed by the provided pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

var _ Store = (*PGStore)(nil)

// ListModules returns the live modules of one channel in catalog order.
func (s *PGStore) ListModules(ctx context.Context, channelID uuid.UUID) ([]Module, error) {
	const query = `
		SELECT m.id, m.name, m.channel_id
		FROM module m
		JOIN channel c ON c.id = m.channel_id AND NOT c.is_deleted
		WHERE m.channel_id = $1 AND NOT m.is_deleted
		ORDER BY m.created_at, m.id`
	rows, err := s.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("rbac: list modules: %w", err)
	}
	defer rows.Close()

	var modules []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Name, &m.ChannelID); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// ListSubModules returns the live sub-modules of one channel in catalog order.
func (s *PGStore) ListSubModules(ctx context.Context, channelID uuid.UUID) ([]SubModule, error) {
	const query = `
		SELECT sm.id, sm.name, sm.module_id, sm.channel_id
		FROM sub_module sm
		WHERE sm.channel_id = $1 AND NOT sm.is_deleted
		ORDER BY sm.created_at, sm.id`
	rows, err := s.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("rbac: list sub modules: %w", err)
	}
	defer rows.Close()

	var subModules []SubModule
	for rows.Next() {
		var sm SubModule
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.ModuleID, &sm.ChannelID); err != nil {
			return nil, err
		}
		subModules = append(subModules, sm)
	}
	return subModules, rows.Err()
}

// ListActions returns the live action catalog in catalog order.
func (s *PGStore) ListActions(ctx context.Context) ([]Action, error) {
	const query = `
		SELECT a.id, a.name
		FROM action a
		WHERE NOT a.is_deleted
		ORDER BY a.created_at, a.id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rbac: list actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ListGrants returns the grant tuples for one (role, channel) pair, excluding
// rows whose referents were deleted or soft-deleted.
func (s *PGStore) ListGrants(ctx context.Context, roleID, channelID uuid.UUID) ([]Grant, error) {
	const query = `
		SELECT p.module_id, p.sub_module_id, p.channel_id, p.role_id, p.action_id
		FROM permission p
		JOIN module m ON m.id = p.module_id AND NOT m.is_deleted
		JOIN channel c ON c.id = p.channel_id AND NOT c.is_deleted
		JOIN role r ON r.id = p.role_id AND NOT r.is_deleted
		JOIN action a ON a.id = p.action_id AND NOT a.is_deleted
		LEFT JOIN sub_module sm ON sm.id = p.sub_module_id
		WHERE p.role_id = $1 AND p.channel_id = $2 AND NOT p.is_deleted
		  AND (p.sub_module_id IS NULL OR (sm.id IS NOT NULL AND NOT sm.is_deleted))`
	rows, err := s.pool.Query(ctx, query, roleID, channelID)
	if err != nil {
		return nil, fmt.Errorf("rbac: list grants: %w", err)
	}
	defer rows.Close()

	var grants []Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.ModuleID, &g.SubModuleID, &g.ChannelID, &g.RoleID, &g.ActionID); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// FindGrant reports whether a live permission row matches the query. Catalog
// names resolve through joins so a soft-deleted referent never grants.
func (s *PGStore) FindGrant(ctx context.Context, q GrantQuery) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM permission p
			JOIN role r ON r.id = p.role_id AND NOT r.is_deleted
			JOIN channel c ON c.id = p.channel_id AND NOT c.is_deleted AND c.name = $2
			JOIN module m ON m.id = p.module_id AND NOT m.is_deleted AND m.name = $3
			JOIN action a ON a.id = p.action_id AND NOT a.is_deleted AND a.name = $4
			LEFT JOIN sub_module sm ON sm.id = p.sub_module_id AND NOT sm.is_deleted
			WHERE p.role_id = $1 AND NOT p.is_deleted
			  AND (($5 = '' AND p.sub_module_id IS NULL) OR sm.name = $5)
		)`
	var exists bool
	err := s.pool.QueryRow(ctx, query, q.RoleID, q.Channel, q.Module, q.Action, q.SubModule).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("rbac: find grant: %w", err)
	}
	return exists, nil
}

// ReplaceGrants swaps the full grant set for one (role, channel) pair inside
// a single transaction: delete everything, then bulk-insert the new rows.
// Concurrent calls for different pairs touch disjoint rows and do not block.
func (s *PGStore) ReplaceGrants(ctx context.Context, roleID, channelID uuid.UUID, grants []Grant) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM permission WHERE role_id = $1 AND channel_id = $2`,
			roleID, channelID,
		); err != nil {
			return fmt.Errorf("rbac: delete grants: %w", err)
		}
		if len(grants) == 0 {
			return nil
		}

		now := time.Now().UTC()
		inserted, err := tx.CopyFrom(ctx,
			pgx.Identifier{"permission"},
			[]string{"id", "module_id", "sub_module_id", "channel_id", "role_id", "action_id", "is_deleted", "created_at", "updated_at"},
			pgx.CopyFromSlice(len(grants), func(i int) ([]any, error) {
				g := grants[i]
				var subModuleID any
				if g.SubModuleID.Valid {
					subModuleID = g.SubModuleID.UUID
				}
				return []any{uuid.New(), g.ModuleID, subModuleID, channelID, roleID, g.ActionID, false, now, now}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("rbac: insert grants: %w", err)
		}
		if inserted != int64(len(grants)) {
			return fmt.Errorf("rbac: insert grants: wrote %d of %d rows", inserted, len(grants))
		}
		return nil
	})
}

// ListGrantGroups aggregates permission rows by (module, sub-module, role,
// channel), the shape the login response and the listing endpoint share.
func (s *PGStore) ListGrantGroups(ctx context.Context, roleID uuid.NullUUID) ([]GrantGroup, error) {
	const query = `
		SELECT p.module_id, m.name,
		       p.sub_module_id, COALESCE(sm.name, ''),
		       p.role_id, r.name,
		       p.channel_id, c.name,
		       jsonb_agg(jsonb_build_object('id', a.id, 'name', a.name) ORDER BY a.created_at, a.id)
		FROM permission p
		JOIN module m ON m.id = p.module_id AND NOT m.is_deleted
		JOIN channel c ON c.id = p.channel_id AND NOT c.is_deleted
		JOIN role r ON r.id = p.role_id AND NOT r.is_deleted
		JOIN action a ON a.id = p.action_id AND NOT a.is_deleted
		LEFT JOIN sub_module sm ON sm.id = p.sub_module_id AND NOT sm.is_deleted
		WHERE NOT p.is_deleted
		  AND (p.sub_module_id IS NULL OR sm.id IS NOT NULL)
		  AND ($1::uuid IS NULL OR p.role_id = $1)
		GROUP BY p.module_id, m.name, p.sub_module_id, sm.name, p.role_id, r.name, p.channel_id, c.name
		ORDER BY m.name, sm.name`
	var filter any
	if roleID.Valid {
		filter = roleID.UUID
	}
	rows, err := s.pool.Query(ctx, query, filter)
	if err != nil {
		return nil, fmt.Errorf("rbac: list grant groups: %w", err)
	}
	defer rows.Close()

	var groups []GrantGroup
	for rows.Next() {
		var g GrantGroup
		if err := rows.Scan(
			&g.ModuleID, &g.Module,
			&g.SubModuleID, &g.SubModule,
			&g.RoleID, &g.Role,
			&g.ChannelID, &g.Channel,
			&g.Actions,
		); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ListRolesOnChannels returns the distinct (role, channel) pairs holding any
// live grant.
func (s *PGStore) ListRolesOnChannels(ctx context.Context) ([]RoleOnChannel, error) {
	const query = `
		SELECT DISTINCT p.role_id, r.name, p.channel_id, c.name
		FROM permission p
		JOIN role r ON r.id = p.role_id AND NOT r.is_deleted
		JOIN channel c ON c.id = p.channel_id AND NOT c.is_deleted
		WHERE NOT p.is_deleted
		ORDER BY r.name, c.name`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("rbac: list roles on channels: %w", err)
	}
	defer rows.Close()

	var pairs []RoleOnChannel
	for rows.Next() {
		var rc RoleOnChannel
		if err := rows.Scan(&rc.RoleID, &rc.Role, &rc.ChannelID, &rc.Channel); err != nil {
			return nil, err
		}
		pairs = append(pairs, rc)
	}
	return pairs, rows.Err()
}
