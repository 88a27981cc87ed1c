package actions

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
	List(ctx context.Context, filters shared.ListFilters) ([]Action, int, error)
	Get(ctx context.Context, id uuid.UUID) (Action, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, name string, actor uuid.NullUUID) (Action, error)
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
	"name":       "name",
	"created_at": "created_at",
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Action, int, error) {
	where := `WHERE NOT is_deleted AND ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM action `+where, filters.Keyword,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("actions: count: %w", err)
	}

	query := `SELECT id, name, created_at, updated_at FROM action ` + where + ` ` +
		filters.OrderClause(sortColumns, "created_at") + ` LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filters.Keyword, filters.Size, filters.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("actions: list: %w", err)
	}
	defer rows.Close()

	var items []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("actions: scan: %w", err)
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Action, error) {
	var a Action
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM action WHERE id = $1 AND NOT is_deleted`, id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Action{}, httpx.ErrNotFound
	}
	if err != nil {
		return Action{}, fmt.Errorf("actions: get: %w", err)
	}
	return a, nil
}

func (r *repository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM action
			WHERE lower(name) = lower($1) AND NOT is_deleted AND id <> $2
		)`, name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("actions: exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, name string, actor uuid.NullUUID) (Action, error) {
	var a Action
	err := r.pool.QueryRow(ctx,
		`INSERT INTO action (id, name, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, created_at, updated_at`,
		uuid.New(), name, actor,
	).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Action{}, fmt.Errorf("actions: create: %w", err)
	}
	return a, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, name string, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE action
		 SET name = $2, updated_at = now(), updated_by = $3
		 WHERE id = $1 AND NOT is_deleted`,
		id, name, actor,
	)
	if err != nil {
		return fmt.Errorf("actions: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE action
		 SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2
		 WHERE id = $1 AND NOT is_deleted`,
		id, actor,
	)
	if err != nil {
		return fmt.Errorf("actions: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
