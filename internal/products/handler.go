package products

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
	"github.com/argus-admin/argus-admin/internal/rbac"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: mw}
}

func productGate(action string) rbac.Requirement {
	return rbac.Requirement{
		Action:    action,
		Module:    rbac.ModuleProduct,
		SubModule: rbac.SubModuleProduct,
		Channel:   rbac.ChannelWeb,
		Roles:     []string{rbac.RoleSuperAdmin, rbac.RoleAdmin, rbac.RoleDeveloper, rbac.RoleUser},
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(productGate(rbac.ActionView))).Get("/", h.list)
	r.With(h.rbac.Require(productGate(rbac.ActionView))).Get("/{id}", h.get)
	r.With(h.rbac.Require(productGate(rbac.ActionCreate))).Post("/", h.create)
	r.With(h.rbac.Require(productGate(rbac.ActionCreate))).Post("/bulk", h.createMany)
	r.With(h.rbac.Require(productGate(rbac.ActionUpdate))).Put("/{id}", h.update)
	r.With(h.rbac.Require(productGate(rbac.ActionDelete))).Delete("/{id}", h.delete)
	r.With(h.rbac.Require(productGate(rbac.ActionDelete))).Post("/bulk-delete", h.deleteMany)
}

type productRequest struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Price       float64   `json:"price" validate:"gte=0"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
}

type bulkCreateRequest struct {
	Products []productRequest `json:"products" validate:"required,min=1,dive"`
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	var categoryID uuid.NullUUID
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid category_id", httpx.ErrValidation))
			return
		}
		categoryID = uuid.NullUUID{UUID: id, Valid: true}
	}
	items, total, err := h.service.List(r.Context(), filters, categoryID)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "products fetched", shared.NewPaged(items, total, filters))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "product fetched", product)
}

func (req productRequest) toNewProduct() NewProduct {
	return NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	product, err := h.service.Create(r.Context(), req.toNewProduct())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, "product created", product)
}

func (h *Handler) createMany(w http.ResponseWriter, r *http.Request) {
	var req bulkCreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	batch := make([]NewProduct, 0, len(req.Products))
	for _, p := range req.Products {
		batch = append(batch, p.toNewProduct())
	}
	created, err := h.service.CreateMany(r.Context(), batch)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, "products created", map[string]int{"created": created})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	if err := h.service.Update(r.Context(), id, req.toNewProduct()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "product updated", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid product id", httpx.ErrValidation))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "product deleted", nil)
}

func (h *Handler) deleteMany(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	deleted, err := h.service.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "products deleted", map[string]int{"deleted": deleted})
}
