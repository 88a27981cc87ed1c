package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/argus-admin/argus-admin/internal/platform/httpx"
	"github.com/argus-admin/argus-admin/internal/rbac"
)

type stubRepo struct {
	user *User
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, httpx.ErrNotFound
	}
	return s.user, nil
}

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func testUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &User{
		ID:           uuid.New(),
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		RoleID:       uuid.NullUUID{UUID: uuid.New(), Valid: true},
		RoleName:     rbac.RoleAdmin,
	}
}

func TestAuthenticate(t *testing.T) {
	user := testUser(t, "correct horse")
	service := NewService(&stubRepo{user: user}, testTokenConfig())

	got, err := service.Authenticate(context.Background(), "admin", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = service.Authenticate(context.Background(), "admin", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(context.Background(), "nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	user := testUser(t, "correct horse")
	service := NewService(&stubRepo{user: user}, testTokenConfig())

	pair, err := service.IssueTokens(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := service.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.RoleID, claims.RoleID)
	assert.Equal(t, rbac.RoleAdmin, claims.RoleName)

	// A refresh token is not an access token.
	_, err = service.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessExpired(t *testing.T) {
	user := testUser(t, "correct horse")
	service := NewService(&stubRepo{user: user}, testTokenConfig())

	issued := time.Now()
	service.WithNow(func() time.Time { return issued })
	pair, err := service.IssueTokens(user)
	require.NoError(t, err)

	service.WithNow(func() time.Time { return issued.Add(2 * time.Hour) })
	_, err = service.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessTampered(t *testing.T) {
	user := testUser(t, "correct horse")
	service := NewService(&stubRepo{user: user}, testTokenConfig())

	pair, err := service.IssueTokens(user)
	require.NoError(t, err)

	_, err = service.ParseAccess(pair.AccessToken + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	user := testUser(t, "correct horse")
	repo := &stubRepo{user: user}
	service := NewService(repo, testTokenConfig())

	pair, err := service.IssueTokens(user)
	require.NoError(t, err)

	fresh, err := service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	claims, err := service.ParseAccess(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// A deleted account cannot refresh even with a still-valid token.
	repo.user = nil
	_, err = service.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
