package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/db"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters, categoryID uuid.NullUUID) ([]Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, in NewProduct, actor uuid.NullUUID) (Product, error)
	CreateMany(ctx context.Context, in []NewProduct, actor uuid.NullUUID) (int, error)
	Update(ctx context.Context, id uuid.UUID, in NewProduct, actor uuid.NullUUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error
	SoftDeleteMany(ctx context.Context, ids []uuid.UUID, actor uuid.NullUUID) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var sortColumns = map[string]string{
	"name":       "p.name",
	"price":      "p.price",
	"category":   "pc.name",
	"created_at": "p.created_at",
}

const productSelect = `
	SELECT p.id, p.name, COALESCE(p.description, ''), p.price,
	       p.category_id, pc.name, p.created_at, p.updated_at
	FROM product p
	JOIN product_category pc ON pc.id = p.category_id AND NOT pc.is_deleted`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price,
		&p.CategoryID, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters, categoryID uuid.NullUUID) ([]Product, int, error) {
	where := ` WHERE NOT p.is_deleted
		AND ($1 = '' OR p.name ILIKE '%' || $1 || '%')
		AND ($2::uuid IS NULL OR p.category_id = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM product p
		 JOIN product_category pc ON pc.id = p.category_id AND NOT pc.is_deleted`+where,
		filters.Keyword, categoryID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	query := productSelect + where + ` ` +
		filters.OrderClause(sortColumns, "p.created_at") + ` LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, filters.Keyword, categoryID, filters.Size, filters.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("products: scan: %w", err)
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx,
		productSelect+` WHERE p.id = $1 AND NOT p.is_deleted`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, httpx.ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("products: get: %w", err)
	}
	return p, nil
}

func (r *repository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_category WHERE id = $1 AND NOT is_deleted)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("products: category exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, in NewProduct, actor uuid.NullUUID) (Product, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product (id, name, description, price, category_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		uuid.New(), in.Name, in.Description, in.Price, in.CategoryID, actor,
	).Scan(&id)
	if err != nil {
		return Product{}, fmt.Errorf("products: create: %w", err)
	}
	return r.Get(ctx, id)
}

// CreateMany bulk-inserts products inside one transaction; either every row
// lands or none do.
func (r *repository) CreateMany(ctx context.Context, in []NewProduct, actor uuid.NullUUID) (int, error) {
	var inserted int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows := make([][]any, 0, len(in))
		for _, p := range in {
			rows = append(rows, []any{uuid.New(), p.Name, p.Description, p.Price, p.CategoryID, actor})
		}
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"product"},
			[]string{"id", "name", "description", "price", "category_id", "created_by"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("products: bulk insert: %w", err)
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, in NewProduct, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product
		 SET name = $2, description = $3, price = $4, category_id = $5,
		     updated_at = now(), updated_by = $6
		 WHERE id = $1 AND NOT is_deleted`,
		id, in.Name, in.Description, in.Price, in.CategoryID, actor,
	)
	if err != nil {
		return fmt.Errorf("products: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product
		 SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2
		 WHERE id = $1 AND NOT is_deleted`,
		id, actor,
	)
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDeleteMany(ctx context.Context, ids []uuid.UUID, actor uuid.NullUUID) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE product
		 SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2
		 WHERE id = ANY($1) AND NOT is_deleted`,
		ids, actor,
	)
	if err != nil {
		return 0, fmt.Errorf("products: bulk delete: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
