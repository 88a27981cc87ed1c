package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

const findByUsernameQuery = `
	SELECT u.id, u.username, u.email, COALESCE(u.phone, ''), u.password, u.role_id,
	       COALESCE(rl.name, ''), u.created_at, u.updated_at
	FROM "user" u
	LEFT JOIN role rl ON rl.id = u.role_id AND NOT rl.is_deleted
	WHERE u.username = $1 AND NOT u.is_deleted`

// FindByUsername fetches a live user by username with its role name joined.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx, findByUsernameQuery, username).Scan(
		&user.ID, &user.Username, &user.Email, &user.Phone, &user.PasswordHash,
		&user.RoleID, &user.RoleName, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	return &user, nil
}
