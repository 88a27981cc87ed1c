package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

// deniedMessage is intentionally generic: a deny must not reveal whether the
// target exists or which check failed.
const deniedMessage = "you are not permitted to perform this action"

// Middleware gates HTTP routes on a static Requirement via the Evaluator.
type Middleware struct {
	Evaluator *Evaluator
	Logger    *slog.Logger
}

// Require evaluates the requirement before invoking the wrapped handler.
func (m Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			err := m.Evaluator.Authorize(r.Context(), id, req)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			var denied *DeniedError
			if errors.As(err, &denied) {
				if denied.Reason == DenyUnauthenticated {
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", deniedMessage)
					return
				}
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.String("path", r.URL.Path),
						slog.String("reason", string(denied.Reason)))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", deniedMessage)
				return
			}

			if m.Logger != nil {
				m.Logger.Error("authorization check failed", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		})
	}
}
