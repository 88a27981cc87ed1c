package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-admin/argus-admin/internal/rbac"
)

// grantGroupStore is a partial rbac.Store: only the method the login flow
// touches is implemented.
type grantGroupStore struct {
	rbac.Store
	groups []rbac.GrantGroup
}

func (s *grantGroupStore) ListGrantGroups(ctx context.Context, roleID uuid.NullUUID) ([]rbac.GrantGroup, error) {
	return s.groups, nil
}

func newAuthServer(t *testing.T, user *User, groups []rbac.GrantGroup) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(&stubRepo{user: user}, testTokenConfig())
	permissions := rbac.NewService(&grantGroupStore{groups: groups})
	handler := NewHandler(logger, service, permissions)

	r := chi.NewRouter()
	handler.MountRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLoginReturnsTokensAndPermissions(t *testing.T) {
	user := testUser(t, "correct horse")
	groups := []rbac.GrantGroup{{
		Module:    rbac.ModuleUserManagement,
		SubModule: rbac.SubModuleUser,
	}}
	srv := newAuthServer(t, user, groups)

	resp := postJSON(t, srv.URL+"/login", map[string]string{
		"username": "admin",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Message string        `json:"message"`
		Data    loginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.NotEmpty(t, body.Data.RefreshToken)
	assert.Equal(t, user.Username, body.Data.User.Username)
	require.Len(t, body.Data.Permissions, 1)
	assert.Equal(t, rbac.ModuleUserManagement, body.Data.Permissions[0].Module)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newAuthServer(t, testUser(t, "correct horse"), nil)

	resp := postJSON(t, srv.URL+"/login", map[string]string{
		"username": "admin",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsShortPassword(t *testing.T) {
	srv := newAuthServer(t, testUser(t, "correct horse"), nil)

	resp := postJSON(t, srv.URL+"/login", map[string]string{
		"username": "admin",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshEndpoint(t *testing.T) {
	user := testUser(t, "correct horse")
	srv := newAuthServer(t, user, nil)

	login := postJSON(t, srv.URL+"/login", map[string]string{
		"username": "admin",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, login.StatusCode)
	var loginBody struct {
		Data loginResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(login.Body).Decode(&loginBody))

	resp := postJSON(t, srv.URL+"/refresh-token", map[string]string{
		"refresh_token": loginBody.Data.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	bad := postJSON(t, srv.URL+"/refresh-token", map[string]string{
		"refresh_token": "not-a-token",
	})
	assert.Equal(t, http.StatusUnauthorized, bad.StatusCode)
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	user := testUser(t, "correct horse")
	service := NewService(&stubRepo{user: user}, testTokenConfig())
	pair, err := service.IssueTokens(user)
	require.NoError(t, err)

	var seen *rbac.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = rbac.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	mw := Authenticator{Service: service}.Middleware(next)

	// Valid token: identity is available downstream.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	mw.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.UserID)
	assert.Equal(t, rbac.RoleAdmin, seen.RoleName)

	// No token: the request proceeds anonymously.
	seen = &rbac.Identity{}
	mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, seen)

	// Garbage token: also anonymous, not an error.
	seen = &rbac.Identity{}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	mw.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)
}
