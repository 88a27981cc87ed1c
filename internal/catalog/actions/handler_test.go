package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
	"github.com/argus-admin/argus-admin/internal/rbac"
)

type mockRepo struct {
	items map[uuid.UUID]Action
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[uuid.UUID]Action{}}
}

func (m *mockRepo) List(ctx context.Context, filters shared.ListFilters) ([]Action, int, error) {
	var out []Action
	for _, a := range m.items {
		if filters.Keyword == "" || strings.Contains(strings.ToLower(a.Name), strings.ToLower(filters.Keyword)) {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (Action, error) {
	a, ok := m.items[id]
	if !ok {
		return Action{}, httpx.ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	for _, a := range m.items {
		if strings.EqualFold(a.Name, name) && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Create(ctx context.Context, name string, actor uuid.NullUUID) (Action, error) {
	a := Action{ID: uuid.New(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.items[a.ID] = a
	return a, nil
}

func (m *mockRepo) Update(ctx context.Context, id uuid.UUID, name string, actor uuid.NullUUID) error {
	a, ok := m.items[id]
	if !ok {
		return httpx.ErrNotFound
	}
	a.Name = name
	m.items[id] = a
	return nil
}

func (m *mockRepo) SoftDelete(ctx context.Context, id uuid.UUID, actor uuid.NullUUID) error {
	if _, ok := m.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// noGrants satisfies rbac.GrantFinder; the catalog gates never reach it
// because they are allow-list only.
type noGrants struct{}

func (noGrants) FindGrant(ctx context.Context, q rbac.GrantQuery) (bool, error) {
	return false, nil
}

func newCatalogServer(t *testing.T, repo Repository, role string) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := rbac.Middleware{Evaluator: rbac.NewEvaluator(noGrants{}), Logger: logger}
	handler := NewHandler(logger, NewService(repo), mw)

	r := chi.NewRouter()
	if role != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				id := &rbac.Identity{
					UserID:   uuid.New(),
					Username: "tester",
					RoleID:   uuid.NullUUID{UUID: uuid.New(), Valid: true},
					RoleName: role,
				}
				next.ServeHTTP(w, req.WithContext(rbac.ContextWithIdentity(req.Context(), id)))
			})
		})
	}
	handler.MountRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateAndGetAction(t *testing.T) {
	repo := newMockRepo()
	srv := newCatalogServer(t, repo, rbac.RoleAdmin)

	payload, _ := json.Marshal(map[string]string{"name": "Approve"})
	resp, err := http.Post(srv.URL+"/", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data Action `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Approve", body.Data.Name)

	got, err := http.Get(srv.URL + "/" + body.Data.ID.String())
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)
}

func TestCreateDuplicateActionConflicts(t *testing.T) {
	repo := newMockRepo()
	srv := newCatalogServer(t, repo, rbac.RoleAdmin)

	payload, _ := json.Marshal(map[string]string{"name": "Approve"})
	first, err := http.Post(srv.URL+"/", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second, err := http.Post(srv.URL+"/", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

func TestCatalogRequiresAdminRole(t *testing.T) {
	srv := newCatalogServer(t, newMockRepo(), rbac.RoleUser)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCatalogRequiresAuthentication(t *testing.T) {
	srv := newCatalogServer(t, newMockRepo(), "")

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetUnknownAction(t *testing.T) {
	srv := newCatalogServer(t, newMockRepo(), rbac.RoleAdmin)

	resp, err := http.Get(srv.URL + "/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
