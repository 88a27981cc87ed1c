package submodules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters, moduleID uuid.NullUUID) ([]SubModule, int, error)
	Get(ctx context.Context, id uuid.UUID) (SubModule, error)
	ModuleChannel(ctx context.Context, moduleID uuid.UUID) (uuid.UUID, error)
	ExistsByName(ctx context.Context, name string, moduleID, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, name string, moduleID, channelID uuid.UUID, actor uuid.NullUUID) (SubModule, error)
	Update(ctx context.Context, id uuid.UUID, name string, actor uuid.NullUUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var sortColumns = map[string]string{
	"name":       "sm.name",
	"module":     "m.name",
	"created_at": "sm.created_at",
}

const subModuleSelect = `
	SELECT sm.id, sm.name, sm.module_id, m.name, sm.channel_id, c.name,
	       sm.created_at, sm.updated_at
	FROM sub_module sm
	JOIN module m ON m.id = sm.module_id AND NOT m.is_deleted
	JOIN channel c ON c.id = sm.channel_id AND NOT c.is_deleted`

func (r *repository) List(ctx context.Context, filters shared.ListFilters, moduleID uuid.NullUUID) ([]SubModule, int, error) {
	where := ` WHERE NOT sm.is_deleted
		AND ($1 = '' OR sm.name ILIKE '%' || $1 || '%')
		AND ($2::uuid IS NULL OR sm.module_id = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*)
		 FROM sub_module sm
		 JOIN module m ON m.id = sm.module_id AND NOT m.is_deleted
		 JOIN channel c ON c.id = sm.channel_id AND NOT c.is_deleted`+where,
		filters.Keyword, moduleID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("submodules: count: %w", err)
	}

	query := subModuleSelect + where + ` ` +
		filters.OrderClause(sortColumns, "sm.created_at") + ` LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filters.Keyword, moduleID, filters.Size, filters.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("submodules: list: %w", err)
	}
	defer rows.Close()

	var items []SubModule
	for rows.Next() {
		var sm SubModule
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.ModuleID, &sm.Module, &sm.ChannelID, &sm.Channel, &sm.CreatedAt, &sm.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("submodules: scan: %w", err)
		}
		items = append(items, sm)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (SubModule, error) {
	var sm SubModule
	err := r.pool.QueryRow(ctx,
		subModuleSelect+` WHERE sm.id = $1 AND NOT sm.is_deleted`, id,
	).Scan(&sm.ID, &sm.Name, &sm.ModuleID, &sm.Module, &sm.ChannelID, &sm.Channel, &sm.CreatedAt, &sm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SubModule{}, httpx.ErrNotFound
	}
	if err != nil {
		return SubModule{}, fmt.Errorf("submodules: get: %w", err)
	}
	return sm, nil
}

// ModuleChannel resolves the parent module's channel so the new row's
// denormalized channel id cannot drift from the module's.
func (r *repository) ModuleChannel(ctx context.Context, moduleID uuid.UUID) (uuid.UUID, error) {
	var channelID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT channel_id FROM module WHERE id = $1 AND NOT is_deleted`, moduleID,
	).Scan(&channelID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, httpx.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("submodules: module channel: %w", err)
	}
	return channelID, nil
}

func (r *repository) ExistsByName(ctx context.Context, name string, moduleID, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM sub_module
			WHERE lower(name) = lower($1) AND module_id = $2
			  AND NOT is_deleted AND id <> $3
		)`, name, moduleID, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("submodules: exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, name string, moduleID, channelID uuid.UUID, actor uuid.NullUUID) (SubModule, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sub_module (id, name, module_id, channel_id, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		uuid.New(), name, moduleID, channelID, actor,
	).Scan(&id)
	if err != nil {
		return SubModule{}, fmt.Errorf("submodules: create: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, name string, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sub_module
		 SET name = $2, updated_at = now(), updated_by = $3
		 WHERE id = $1 AND NOT is_deleted`,
		id, name, actor,
	)
	if err != nil {
		return fmt.Errorf("submodules: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sub_module
		 SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2
		 WHERE id = $1 AND NOT is_deleted`,
		id, actor,
	)
	if err != nil {
		return fmt.Errorf("submodules: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
