package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DenyReason classifies why an authorization check failed. Reasons are for
// logs and tests only; clients always receive the same generic message.
type DenyReason string

const (
	DenyUnauthenticated  DenyReason = "unauthenticated"
	DenyRoleNotPermitted DenyReason = "role_not_permitted"
	DenyGrantMissing     DenyReason = "grant_missing"
)

// DeniedError is returned by Authorize on any deny. Its message deliberately
// does not reveal which check failed or whether the target exists.
type DeniedError struct {
	Reason DenyReason
}

func (e *DeniedError) Error() string {
	return "rbac: not permitted"
}

// Requirement is the static gate annotation attached to a protected route.
type Requirement struct {
	Action    string
	Module    string
	SubModule string // empty for modules without sub-modules
	Channel   string
	Roles     []string

	// AllowListOnly skips the permission store lookup and relies on the
	// role allow-list alone. Used by the matrix-editing routes whose grants
	// are the thing being edited.
	AllowListOnly bool
}

// GrantQuery locates a permission row by catalog names for one role.
type GrantQuery struct {
	RoleID    uuid.UUID
	Action    string
	Module    string
	SubModule string
	Channel   string
}

// GrantFinder is the slice of the permission store the evaluator needs.
type GrantFinder interface {
	FindGrant(ctx context.Context, q GrantQuery) (bool, error)
}

// Evaluator answers allow/deny for one identity and requirement. It performs
// the coarse role allow-list check first, then the fine-grained permission
// store lookup, and has no side effects.
type Evaluator struct {
	store GrantFinder
}

// NewEvaluator constructs an Evaluator backed by the given store.
func NewEvaluator(store GrantFinder) *Evaluator {
	return &Evaluator{store: store}
}

// Authorize returns nil on allow and a *DeniedError on deny. Store failures
// surface as ordinary errors, not denials.
func (e *Evaluator) Authorize(ctx context.Context, id *Identity, req Requirement) error {
	if id == nil {
		return &DeniedError{Reason: DenyUnauthenticated}
	}
	if !id.RoleID.Valid || !roleAllowed(id.RoleName, req.Roles) {
		return &DeniedError{Reason: DenyRoleNotPermitted}
	}
	if req.AllowListOnly {
		return nil
	}
	// Super Admin is the bootstrap role and holds every grant implicitly;
	// the permission matrix never carries rows for it.
	if id.RoleName == RoleSuperAdmin {
		return nil
	}
	ok, err := e.store.FindGrant(ctx, GrantQuery{
		RoleID:    id.RoleID.UUID,
		Action:    req.Action,
		Module:    req.Module,
		SubModule: req.SubModule,
		Channel:   req.Channel,
	})
	if err != nil {
		return fmt.Errorf("rbac: find grant: %w", err)
	}
	if !ok {
		return &DeniedError{Reason: DenyGrantMissing}
	}
	return nil
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
