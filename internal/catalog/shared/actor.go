package shared

import (
	"context"

	"github.com/google/uuid"

	"github.com/argus-admin/argus-admin/internal/rbac"
)

// ActorFrom extracts the acting user's id for audit stamping. Anonymous
// contexts yield a null id rather than an error: the rbac gate decides who
// may write, the audit columns just record who did.
func ActorFrom(ctx context.Context) uuid.NullUUID {
	id := rbac.IdentityFromContext(ctx)
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id.UserID, Valid: true}
}
