package users

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
	List(ctx context.Context, filters shared.ListFilters) ([]User, int, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	ListActiveEmails(ctx context.Context) ([]User, error)
	UsernameOrEmailTaken(ctx context.Context, username, email string, excludeID uuid.UUID) (bool, error)
	RoleExists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, u NewUser, passwordHash string, actor uuid.NullUUID) (User, error)
	Update(ctx context.Context, id uuid.UUID, u UpdateUser, passwordHash *string, actor uuid.NullUUID) error
	AssignRole(ctx context.Context, id uuid.UUID, roleID uuid.NullUUID, actor uuid.NullUUID) error
	SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var sortColumns = map[string]string{
	"username":   "u.username",
	"email":      "u.email",
	"created_at": "u.created_at",
}

const userSelect = `
	SELECT u.id, u.username, u.email, COALESCE(u.phone, ''), u.password,
	       u.role_id, COALESCE(r.name, ''), u.created_at, u.updated_at
	FROM "user" u
	LEFT JOIN role r ON r.id = u.role_id AND NOT r.is_deleted`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash,
		&u.RoleID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	where := ` WHERE NOT u.is_deleted
		AND ($1 = '' OR u.username ILIKE '%' || $1 || '%' OR u.email ILIKE '%' || $1 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM "user" u`+where, filters.Keyword,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}

	query := userSelect + where + ` ` +
		filters.OrderClause(sortColumns, "u.created_at") + ` LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, filters.Keyword, filters.Size, filters.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("users: scan: %w", err)
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		userSelect+` WHERE u.id = $1 AND NOT u.is_deleted`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, httpx.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: get: %w", err)
	}
	return u, nil
}

// ListActiveEmails returns every live account that has an email address.
func (r *repository) ListActiveEmails(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		userSelect+` WHERE NOT u.is_deleted AND u.email <> '' ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("users: list active: %w", err)
	}
	defer rows.Close()

	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *repository) UsernameOrEmailTaken(ctx context.Context, username, email string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM "user"
			WHERE (lower(username) = lower($1) OR lower(email) = lower($2))
			  AND NOT is_deleted AND id <> $3
		)`, username, email, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("users: uniqueness: %w", err)
	}
	return taken, nil
}

func (r *repository) RoleExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM role WHERE id = $1 AND NOT is_deleted)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("users: role exists: %w", err)
	}
	return exists, nil
}

func (r *repository) Create(ctx context.Context, u NewUser, passwordHash string, actor uuid.NullUUID) (User, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO "user" (id, username, email, phone, password, role_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		uuid.New(), u.Username, u.Email, u.Phone, passwordHash, u.RoleID, actor,
	).Scan(&id)
	if err != nil {
		return User{}, fmt.Errorf("users: create: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, u UpdateUser, passwordHash *string, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE "user"
		 SET email = $2, phone = $3,
		     password = COALESCE($4, password),
		     updated_at = now(), updated_by = $5
		 WHERE id = $1 AND NOT is_deleted`,
		id, u.Email, u.Phone, passwordHash, actor,
	)
	if err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) AssignRole(ctx context.Context, id uuid.UUID, roleID uuid.NullUUID, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE "user"
		 SET role_id = $2, updated_at = now(), updated_by = $3
		 WHERE id = $1 AND NOT is_deleted`,
		id, roleID, actor,
	)
	if err != nil {
		return fmt.Errorf("users: assign role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE "user"
		 SET is_deleted = TRUE, deleted_at = now(), deleted_by = $2
		 WHERE id = $1 AND NOT is_deleted`,
		id, actor,
	)
	if err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
