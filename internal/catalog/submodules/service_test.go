package submodules

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

type mockRepo struct {
	moduleChannels map[uuid.UUID]uuid.UUID
	existing       map[string]uuid.UUID // lower name -> module id
	created        []SubModule
	byID           map[uuid.UUID]SubModule
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		moduleChannels: map[uuid.UUID]uuid.UUID{},
		existing:       map[string]uuid.UUID{},
		byID:           map[uuid.UUID]SubModule{},
	}
}

func (m *mockRepo) List(ctx context.Context, filters shared.ListFilters, moduleID uuid.NullUUID) ([]SubModule, int, error) {
	return m.created, len(m.created), nil
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (SubModule, error) {
	sm, ok := m.byID[id]
	if !ok {
		return SubModule{}, httpx.ErrNotFound
	}
	return sm, nil
}

func (m *mockRepo) ModuleChannel(ctx context.Context, moduleID uuid.UUID) (uuid.UUID, error) {
	ch, ok := m.moduleChannels[moduleID]
	if !ok {
		return uuid.Nil, httpx.ErrNotFound
	}
	return ch, nil
}

func (m *mockRepo) ExistsByName(ctx context.Context, name string, moduleID, excludeID uuid.UUID) (bool, error) {
	owner, ok := m.existing[name]
	return ok && owner == moduleID, nil
}

func (m *mockRepo) Create(ctx context.Context, name string, moduleID, channelID uuid.UUID, actor uuid.NullUUID) (SubModule, error) {
	sm := SubModule{ID: uuid.New(), Name: name, ModuleID: moduleID, ChannelID: channelID}
	m.created = append(m.created, sm)
	m.byID[sm.ID] = sm
	return sm, nil
}

func (m *mockRepo) Update(ctx context.Context, id uuid.UUID, name string, actor uuid.NullUUID) error {
	sm, ok := m.byID[id]
	if !ok {
		return httpx.ErrNotFound
	}
	sm.Name = name
	m.byID[id] = sm
	return nil
}

func (m *mockRepo) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	if _, ok := m.byID[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func TestCreateInheritsModuleChannel(t *testing.T) {
	repo := newMockRepo()
	moduleID, channelID := uuid.New(), uuid.New()
	repo.moduleChannels[moduleID] = channelID
	service := NewService(repo)

	sm, err := service.Create(context.Background(), "Inventory", moduleID)
	require.NoError(t, err)
	assert.Equal(t, channelID, sm.ChannelID)
	assert.Equal(t, moduleID, sm.ModuleID)
}

func TestCreateUnknownModule(t *testing.T) {
	service := NewService(newMockRepo())

	_, err := service.Create(context.Background(), "Inventory", uuid.New())
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateWithinModule(t *testing.T) {
	repo := newMockRepo()
	moduleID := uuid.New()
	repo.moduleChannels[moduleID] = uuid.New()
	repo.existing["Inventory"] = moduleID
	service := NewService(repo)

	_, err := service.Create(context.Background(), "Inventory", moduleID)
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	// The same name under a different module is allowed.
	otherModule := uuid.New()
	repo.moduleChannels[otherModule] = uuid.New()
	_, err = service.Create(context.Background(), "Inventory", otherModule)
	assert.NoError(t, err)
}

func TestCreateRejectsBlankName(t *testing.T) {
	service := NewService(newMockRepo())

	_, err := service.Create(context.Background(), "   ", uuid.New())
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateChecksSiblingNames(t *testing.T) {
	repo := newMockRepo()
	moduleID := uuid.New()
	repo.moduleChannels[moduleID] = uuid.New()
	service := NewService(repo)

	sm, err := service.Create(context.Background(), "Inventory", moduleID)
	require.NoError(t, err)

	repo.existing["Stock"] = moduleID
	err = service.Update(context.Background(), sm.ID, "Stock")
	assert.ErrorIs(t, err, httpx.ErrDuplicate)

	require.NoError(t, service.Update(context.Background(), sm.ID, "Warehouse"))
}

func TestDeleteUnknown(t *testing.T) {
	service := NewService(newMockRepo())
	assert.ErrorIs(t, service.Delete(context.Background(), uuid.New()), httpx.ErrNotFound)
}
