package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskTypePurgeDeleted is the nightly task removing rows that were
// soft-deleted longer than the retention window ago.
const TaskTypePurgeDeleted = "db:purge_deleted"

// NewPurgeDeletedTask constructs the purge task; it carries no payload.
func NewPurgeDeletedTask() *asynq.Task {
	return asynq.NewTask(TaskTypePurgeDeleted, nil)
}

// purgeTables is ordered so FK referents go last: permission rows point at
// every catalog table, products point at categories, users at roles.
var purgeTables = []string{
	"permission",
	"product",
	"product_category",
	`"user"`,
	"sub_module",
	"module",
	"action",
	"role",
	"channel",
}

// PurgeDeletedHandler hard-deletes expired soft-deleted rows.
type PurgeDeletedHandler struct {
	Pool      *pgxpool.Pool
	Retention time.Duration
	Logger    *slog.Logger
}

func (h PurgeDeletedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	cutoff := time.Now().UTC().Add(-h.Retention)
	var total int64
	for _, table := range purgeTables {
		tag, err := h.Pool.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE is_deleted AND deleted_at < $1`, table), cutoff)
		if err != nil {
			return fmt.Errorf("jobs: purge %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	h.Logger.Info("purge completed",
		slog.Int64("rows", total),
		slog.Time("cutoff", cutoff))
	return nil
}
