package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPermissionTreeRequiresBothIDs(t *testing.T) {
	store := newMemStore()
	service := NewService(store)

	for _, tc := range []struct {
		name          string
		role, channel uuid.UUID
	}{
		{"missing role", uuid.Nil, uuid.New()},
		{"missing channel", uuid.New(), uuid.Nil},
		{"missing both", uuid.Nil, uuid.Nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := service.BuildPermissionTree(context.Background(), tc.role, tc.channel)
			require.NoError(t, err)
			assert.Empty(t, tree)
		})
	}
}

func TestBuildPermissionTreeExcludesSoftDeletedModule(t *testing.T) {
	store := newMemStore()
	channel := store.addChannel(ChannelWeb)
	role := store.addRole(RoleAdmin)
	live := store.addModule("Live", channel)
	ghost := store.addModule("Ghost", channel)
	view := store.addAction(ActionView)

	store.grant(Grant{ModuleID: ghost, ChannelID: channel, RoleID: role, ActionID: view})
	store.deleted[ghost] = true

	service := NewService(store)
	tree, err := service.BuildPermissionTree(context.Background(), role, channel)
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, live, tree[0].ID)
	assert.False(t, tree[0].Checked, "grant on a soft-deleted module must not check anything")
}

func TestReplacePermissionsFlattensAndStamps(t *testing.T) {
	store := newMemStore()
	channel := store.addChannel(ChannelWeb)
	otherChannel := store.addChannel(ChannelMobile)
	role := store.addRole(RoleAdmin)
	moduleID := uuid.New()
	subID := uuid.New()
	flatModuleID := uuid.New()
	view, create, del := uuid.New(), uuid.New(), uuid.New()

	service := NewService(store)
	err := service.ReplacePermissions(context.Background(), role, channel, []GrantInput{
		{
			ModuleID:    moduleID,
			SubModuleID: sub(subID),
			// Payload channel disagrees with the call scope; the call wins.
			ChannelID: otherChannel,
			Actions:   []uuid.UUID{view, create},
		},
		{ModuleID: flatModuleID, Actions: []uuid.UUID{del}},
	})
	require.NoError(t, err)

	stored := store.grants[[2]uuid.UUID{role, channel}]
	require.Len(t, stored, 3)
	for _, g := range stored {
		assert.Equal(t, role, g.RoleID)
		assert.Equal(t, channel, g.ChannelID)
	}
	assert.Equal(t, sub(subID), stored[0].SubModuleID)
	assert.False(t, stored[2].SubModuleID.Valid)
	assert.Empty(t, store.grants[[2]uuid.UUID{role, otherChannel}])
}

func TestReplacePermissionsEmptyClearsOnlyThatPair(t *testing.T) {
	store := newMemStore()
	web := store.addChannel(ChannelWeb)
	mobile := store.addChannel(ChannelMobile)
	role := store.addRole(RoleAdmin)
	moduleID := store.addModule("User Management", web)
	view := store.addAction(ActionView)

	store.grant(Grant{ModuleID: moduleID, ChannelID: web, RoleID: role, ActionID: view})
	store.grant(Grant{ModuleID: moduleID, ChannelID: mobile, RoleID: role, ActionID: view})

	service := NewService(store)
	require.NoError(t, service.ReplacePermissions(context.Background(), role, web, nil))

	webGrants, err := service.ListGrants(context.Background(), role, web)
	require.NoError(t, err)
	assert.Empty(t, webGrants)

	mobileGrants, err := service.ListGrants(context.Background(), role, mobile)
	require.NoError(t, err)
	assert.Len(t, mobileGrants, 1, "other channels stay untouched")
}

func TestReplacePermissionsFailureKeepsPriorSet(t *testing.T) {
	store := newMemStore()
	channel := store.addChannel(ChannelWeb)
	role := store.addRole(RoleAdmin)
	moduleID := store.addModule("User Management", channel)
	view := store.addAction(ActionView)

	store.grant(Grant{ModuleID: moduleID, ChannelID: channel, RoleID: role, ActionID: view})
	store.insertErr = errors.New("violates foreign key constraint")

	service := NewService(store)
	err := service.ReplacePermissions(context.Background(), role, channel, []GrantInput{
		{ModuleID: uuid.New(), Actions: []uuid.UUID{uuid.New()}},
	})
	require.Error(t, err)

	grants, listErr := service.ListGrants(context.Background(), role, channel)
	require.NoError(t, listErr)
	assert.Len(t, grants, 1, "rollback leaves the prior permission set authoritative")
}

func TestReplacePermissionsRejectsBadInputBeforeWriting(t *testing.T) {
	store := newMemStore()
	channel := store.addChannel(ChannelWeb)
	role := store.addRole(RoleAdmin)
	moduleID := store.addModule("User Management", channel)
	view := store.addAction(ActionView)
	store.grant(Grant{ModuleID: moduleID, ChannelID: channel, RoleID: role, ActionID: view})

	service := NewService(store)

	err := service.ReplacePermissions(context.Background(), uuid.Nil, channel, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = service.ReplacePermissions(context.Background(), role, channel, []GrantInput{
		{ModuleID: uuid.Nil, Actions: []uuid.UUID{view}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	grants, listErr := service.ListGrants(context.Background(), role, channel)
	require.NoError(t, listErr)
	assert.Len(t, grants, 1, "validation failures never touch the store")
}

func TestRolesOnChannels(t *testing.T) {
	store := newMemStore()
	web := store.addChannel(ChannelWeb)
	role := store.addRole(RoleAdmin)
	moduleID := store.addModule("User Management", web)
	view := store.addAction(ActionView)
	store.grant(Grant{ModuleID: moduleID, ChannelID: web, RoleID: role, ActionID: view})

	service := NewService(store)
	pairs, err := service.RolesOnChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, RoleAdmin, pairs[0].Role)
	assert.Equal(t, ChannelWeb, pairs[0].Channel)
}
