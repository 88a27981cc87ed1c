package categories

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
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id uuid.UUID) (Category, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, name string, actor uuid.NullUUID) (Category, error)
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

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	where := `WHERE NOT is_deleted AND ($1 = '' OR name ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM product_category `+where, filters.Keyword,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("categories: count: %w", err)
	}

	query := `SELECT id, name, created_at, updated_at FROM product_category ` + where + ` ` +
		filters.OrderClause(sortColumns, "created_at") + ` LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filters.Keyword, filters.Size, filters.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("categories: list: %w", err)
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("categories: scan: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM product_category WHERE id = $1 AND NOT is_deleted`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, httpx.ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("categories: get: %w", err)
	}
	return c, nil
}

func (r *repository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM product_category
			WHERE lower(name) = lower($1) AND NOT is_deleted AND id <> $2
		)`, name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("categories: exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, name string, actor uuid.NullUUID) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product_category (id, name, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, created_at, updated_at`,
		uuid.New(), name, actor,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, fmt.Errorf("categories: create: %w", err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, name string, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product_category
		 SET name = $2, updated_at = now(), updated_by = $3
		 WHERE id = $1 AND NOT is_deleted`,
		id, name, actor,
	)
	if err != nil {
		return fmt.Errorf("categories: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product_category
		 SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2
		 WHERE id = $1 AND NOT is_deleted`,
		id, actor,
	)
	if err != nil {
		return fmt.Errorf("categories: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
