package rbac

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

func newMatrixServer(t *testing.T, store *memStore, id *Identity) *httptest.Server {
	t.Helper()
	service := NewService(store)
	mw := Middleware{Evaluator: NewEvaluator(store)}
	handler := NewHandler(discardLogger(), service, mw)

	r := chi.NewRouter()
	if id != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(ContextWithIdentity(req.Context(), id)))
			})
		})
	}
	handler.MountRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestModulesWithPermissionsEndpoint(t *testing.T) {
	store, role := grantedStore(t)
	channel := store.channels[store.modules[0].ChannelID].ID
	srv := newMatrixServer(t, store, adminIdentity(role))

	resp, err := http.Get(fmt.Sprintf("%s/modules-with-permissions?role_id=%s&channel_id=%s", srv.URL, role, channel))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data []ModuleNode `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	assert.True(t, envelope.Data[0].Checked)
}

func TestModulesWithPermissionsMissingFilters(t *testing.T) {
	store, role := grantedStore(t)
	srv := newMatrixServer(t, store, adminIdentity(role))

	resp, err := http.Get(srv.URL + "/modules-with-permissions")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data []ModuleNode `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Empty(t, envelope.Data, "lenient read: missing filters yield an empty tree")
}

func TestReplacePermissionsEndpoint(t *testing.T) {
	store, role := grantedStore(t)
	channel := store.channels[store.modules[0].ChannelID].ID
	srv := newMatrixServer(t, store, adminIdentity(role))

	body := fmt.Sprintf(`{
		"role_id": %q,
		"channel_id": %q,
		"permissions": [
			{"module_id": %q, "sub_module_id": %q, "channel_id": %q, "actions": [%q]}
		]
	}`, role, channel, store.modules[0].ID, store.subModules[0].ID, channel, store.actions[0].ID)

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/permissions", strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope httpx.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Nil(t, envelope.Data, "success carries no payload")

	stored := store.grants[[2]uuid.UUID{role, channel}]
	require.Len(t, stored, 1)
}

func TestReplacePermissionsEndpointRejectsMissingRole(t *testing.T) {
	store, role := grantedStore(t)
	srv := newMatrixServer(t, store, adminIdentity(role))

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/permissions",
		strings.NewReader(`{"channel_id": "`+uuid.NewString()+`", "permissions": []}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMatrixRoutesRequireAdminRole(t *testing.T) {
	store, _ := grantedStore(t)
	id := adminIdentity(uuid.New())
	id.RoleName = RoleUser
	srv := newMatrixServer(t, store, id)

	resp, err := http.Get(srv.URL + "/modules-with-permissions")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
