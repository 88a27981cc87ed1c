package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminIdentity(roleID uuid.UUID) *Identity {
	return &Identity{
		UserID:   uuid.New(),
		Username: "admin",
		RoleID:   uuid.NullUUID{UUID: roleID, Valid: true},
		RoleName: RoleAdmin,
	}
}

func userRequirement() Requirement {
	return Requirement{
		Action:    ActionView,
		Module:    ModuleUserManagement,
		SubModule: SubModuleUser,
		Channel:   ChannelWeb,
		Roles:     []string{RoleAdmin},
	}
}

func grantedStore(t *testing.T) (*memStore, uuid.UUID) {
	t.Helper()
	store := newMemStore()
	channel := store.addChannel(ChannelWeb)
	role := store.addRole(RoleAdmin)
	moduleID := store.addModule(ModuleUserManagement, channel)
	subID := store.addSubModule(SubModuleUser, moduleID, channel)
	view := store.addAction(ActionView)
	store.grant(Grant{
		ModuleID:    moduleID,
		SubModuleID: sub(subID),
		ChannelID:   channel,
		RoleID:      role,
		ActionID:    view,
	})
	return store, role
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	eval := NewEvaluator(newMemStore())

	err := eval.Authorize(context.Background(), nil, userRequirement())

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, DenyUnauthenticated, denied.Reason)
}

func TestAuthorizeRolelessUserDenied(t *testing.T) {
	eval := NewEvaluator(newMemStore())
	id := &Identity{UserID: uuid.New(), Username: "drifter"}

	err := eval.Authorize(context.Background(), id, userRequirement())

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, DenyRoleNotPermitted, denied.Reason)
}

func TestAuthorizeRoleOutsideAllowList(t *testing.T) {
	store, _ := grantedStore(t)
	eval := NewEvaluator(store)
	id := &Identity{
		UserID:   uuid.New(),
		RoleID:   uuid.NullUUID{UUID: uuid.New(), Valid: true},
		RoleName: RoleDeveloper,
	}

	err := eval.Authorize(context.Background(), id, userRequirement())

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, DenyRoleNotPermitted, denied.Reason)
	assert.Zero(t, store.findCalls, "allow-list check short-circuits before the store")
}

func TestAuthorizeGranted(t *testing.T) {
	store, role := grantedStore(t)
	eval := NewEvaluator(store)

	err := eval.Authorize(context.Background(), adminIdentity(role), userRequirement())
	assert.NoError(t, err)
}

func TestAuthorizeGrantMissing(t *testing.T) {
	store, role := grantedStore(t)
	eval := NewEvaluator(store)

	req := userRequirement()
	req.Action = ActionDelete // granted only View

	err := eval.Authorize(context.Background(), adminIdentity(role), req)

	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, DenyGrantMissing, denied.Reason)
}

func TestAuthorizeAllowListOnlySkipsStore(t *testing.T) {
	store, role := grantedStore(t)
	eval := NewEvaluator(store)

	req := userRequirement()
	req.Action = ActionDelete
	req.AllowListOnly = true

	err := eval.Authorize(context.Background(), adminIdentity(role), req)
	assert.NoError(t, err)
	assert.Zero(t, store.findCalls)
}

func TestAuthorizeSoftDeletedReferentDenies(t *testing.T) {
	store, role := grantedStore(t)
	eval := NewEvaluator(store)
	id := adminIdentity(role)

	require.NoError(t, eval.Authorize(context.Background(), id, userRequirement()))

	// Soft-delete the granted module: the row still exists but must stop
	// granting.
	store.deleted[store.modules[0].ID] = true

	err := eval.Authorize(context.Background(), id, userRequirement())
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, DenyGrantMissing, denied.Reason)
}

func TestAuthorizeIdempotent(t *testing.T) {
	store, role := grantedStore(t)
	eval := NewEvaluator(store)
	id := adminIdentity(role)
	req := userRequirement()

	for i := 0; i < 5; i++ {
		assert.NoError(t, eval.Authorize(context.Background(), id, req))
	}

	req.Action = ActionDelete
	for i := 0; i < 5; i++ {
		var denied *DeniedError
		require.ErrorAs(t, eval.Authorize(context.Background(), id, req), &denied)
		assert.Equal(t, DenyGrantMissing, denied.Reason)
	}
}

type failingFinder struct{}

func (failingFinder) FindGrant(ctx context.Context, q GrantQuery) (bool, error) {
	return false, errors.New("connection reset")
}

func TestAuthorizeStoreErrorIsNotADenial(t *testing.T) {
	eval := NewEvaluator(failingFinder{})

	err := eval.Authorize(context.Background(), adminIdentity(uuid.New()), userRequirement())
	require.Error(t, err)

	var denied *DeniedError
	assert.False(t, errors.As(err, &denied))
}

func TestAuthorizeSuperAdminSkipsGrantLookup(t *testing.T) {
	store := newMemStore()
	eval := NewEvaluator(store)
	id := &Identity{
		UserID:   uuid.New(),
		Username: "root",
		RoleID:   uuid.NullUUID{UUID: uuid.New(), Valid: true},
		RoleName: RoleSuperAdmin,
	}
	req := userRequirement()
	req.Roles = []string{RoleSuperAdmin, RoleAdmin}

	require.NoError(t, eval.Authorize(context.Background(), id, req))
	assert.Zero(t, store.findCalls, "Super Admin holds every grant implicitly")
}

func TestAuthorizeSuperAdminStillBoundByAllowList(t *testing.T) {
	eval := NewEvaluator(newMemStore())
	id := &Identity{
		UserID:   uuid.New(),
		RoleID:   uuid.NullUUID{UUID: uuid.New(), Valid: true},
		RoleName: RoleSuperAdmin,
	}
	req := userRequirement()
	req.Roles = []string{RoleAdmin}

	var denied *DeniedError
	require.ErrorAs(t, eval.Authorize(context.Background(), id, req), &denied)
	assert.Equal(t, DenyRoleNotPermitted, denied.Reason)
}
