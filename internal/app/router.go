package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/argus-admin/argus-admin/internal/auth"
	"github.com/argus-admin/argus-admin/internal/catalog/actions"
	"github.com/argus-admin/argus-admin/internal/catalog/channels"
	"github.com/argus-admin/argus-admin/internal/catalog/modules"
	"github.com/argus-admin/argus-admin/internal/catalog/roles"
	"github.com/argus-admin/argus-admin/internal/catalog/submodules"
	"github.com/argus-admin/argus-admin/internal/payments"
	"github.com/argus-admin/argus-admin/internal/products"
	"github.com/argus-admin/argus-admin/internal/products/categories"
	"github.com/argus-admin/argus-admin/internal/rbac"
	"github.com/argus-admin/argus-admin/internal/users"
	"github.com/argus-admin/argus-admin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	Authenticator *auth.Authenticator

	AuthHandler       *auth.Handler
	RBACHandler       *rbac.Handler
	ActionsHandler    *actions.Handler
	ChannelsHandler   *channels.Handler
	RolesHandler      *roles.Handler
	ModulesHandler    *modules.Handler
	SubModulesHandler *submodules.Handler
	UsersHandler      *users.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	PaymentsHandler   *payments.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with Argus defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:        params.Logger,
		Config:        params.Config,
		Authenticator: params.Authenticator,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/rbac", params.RBACHandler.MountRoutes)

	if params.ActionsHandler != nil {
		r.Route("/actions", params.ActionsHandler.MountRoutes)
	}
	if params.ChannelsHandler != nil {
		r.Route("/channels", params.ChannelsHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.ModulesHandler != nil {
		r.Route("/modules", params.ModulesHandler.MountRoutes)
	}
	if params.SubModulesHandler != nil {
		r.Route("/sub-modules", params.SubModulesHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.ProductsHandler != nil {
		r.Route("/products", params.ProductsHandler.MountRoutes)
	}
	if params.CategoriesHandler != nil {
		r.Route("/product-categories", params.CategoriesHandler.MountRoutes)
	}
	if params.PaymentsHandler != nil {
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
