package auth

import (
	"net/http"
	"strings"

	"github.com/argus-admin/argus-admin/internal/rbac"
)

// Authenticator resolves the Bearer token on incoming requests and stores the
// caller's identity in the request context. It does not reject anonymous
// requests: routes decide via their rbac requirement whether an identity is
// mandatory, and a missing identity denies there as Unauthenticated.
type Authenticator struct {
	Service *Service
}

// Middleware returns the http middleware performing token resolution.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := a.Service.ParseAccess(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			// Expired or forged tokens are treated the same as anonymous.
			next.ServeHTTP(w, r)
			return
		}
		id := &rbac.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
			RoleID:   claims.RoleID,
			RoleName: claims.RoleName,
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithIdentity(r.Context(), id)))
	})
}
