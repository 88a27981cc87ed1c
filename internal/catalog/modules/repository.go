package modules

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
	List(ctx context.Context, filters shared.ListFilters, channelID uuid.NullUUID) ([]Module, int, error)
	Get(ctx context.Context, id uuid.UUID) (Module, error)
	ChannelExists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByName(ctx context.Context, name string, channelID, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, name string, channelID uuid.UUID, actor uuid.NullUUID) (Module, error)
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
	"name":       "m.name",
	"channel":    "c.name",
	"created_at": "m.created_at",
}

// moduleSelect aggregates live sub-modules as a JSON array so one round
// trip yields the full hierarchy.
const moduleSelect = `
	SELECT m.id, m.name, m.channel_id, c.name,
	       COALESCE(jsonb_agg(jsonb_build_object('id', sm.id, 'name', sm.name) ORDER BY sm.name)
	                FILTER (WHERE sm.id IS NOT NULL), '[]'::jsonb),
	       m.created_at, m.updated_at
	FROM module m
	JOIN channel c ON c.id = m.channel_id AND NOT c.is_deleted
	LEFT JOIN sub_module sm ON sm.module_id = m.id AND NOT sm.is_deleted`

func (r *repository) List(ctx context.Context, filters shared.ListFilters, channelID uuid.NullUUID) ([]Module, int, error) {
	where := ` WHERE NOT m.is_deleted
		AND ($1 = '' OR m.name ILIKE '%' || $1 || '%')
		AND ($2::uuid IS NULL OR m.channel_id = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM module m
		 JOIN channel c ON c.id = m.channel_id AND NOT c.is_deleted`+where,
		filters.Keyword, channelID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("modules: count: %w", err)
	}

	query := moduleSelect + where +
		` GROUP BY m.id, m.name, m.channel_id, c.name, m.created_at, m.updated_at ` +
		filters.OrderClause(sortColumns, "m.created_at") + ` LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filters.Keyword, channelID, filters.Size, filters.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("modules: list: %w", err)
	}
	defer rows.Close()

	var items []Module
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.Name, &m.ChannelID, &m.Channel, &m.SubModules, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("modules: scan: %w", err)
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Module, error) {
	var m Module
	err := r.pool.QueryRow(ctx,
		moduleSelect+` WHERE m.id = $1 AND NOT m.is_deleted
		 GROUP BY m.id, m.name, m.channel_id, c.name, m.created_at, m.updated_at`, id,
	).Scan(&m.ID, &m.Name, &m.ChannelID, &m.Channel, &m.SubModules, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Module{}, httpx.ErrNotFound
	}
	if err != nil {
		return Module{}, fmt.Errorf("modules: get: %w", err)
	}
	return m, nil
}

func (r *repository) ChannelExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM channel WHERE id = $1 AND NOT is_deleted)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("modules: channel exists: %w", err)
	}
	return exists, nil
}

func (r *repository) ExistsByName(ctx context.Context, name string, channelID, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM module
			WHERE lower(name) = lower($1) AND channel_id = $2
			  AND NOT is_deleted AND id <> $3
		)`, name, channelID, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("modules: exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, name string, channelID uuid.UUID, actor uuid.NullUUID) (Module, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO module (id, name, channel_id, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		uuid.New(), name, channelID, actor,
	).Scan(&id)
	if err != nil {
		return Module{}, fmt.Errorf("modules: create: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, name string, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE module
		 SET name = $2, updated_at = now(), updated_by = $3
		 WHERE id = $1 AND NOT is_deleted`,
		id, name, actor,
	)
	if err != nil {
		return fmt.Errorf("modules: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE module
		 SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2
		 WHERE id = $1 AND NOT is_deleted`,
		id, actor,
	)
	if err != nil {
		return fmt.Errorf("modules: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
