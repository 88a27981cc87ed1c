package rbac

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

// Handler exposes the permission matrix endpoints consumed by the
// administration UI.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac Middleware) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), rbac: rbac}
}

// matrixGate guards the matrix routes. AllowListOnly: these routes edit the
// very grants the fine-grained check would consult.
var matrixGate = Requirement{
	Roles:         []string{RoleSuperAdmin, RoleAdmin},
	AllowListOnly: true,
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(matrixGate))
		r.Get("/modules-with-permissions", h.modulesWithPermissions)
		r.Get("/permissions", h.listPermissions)
		r.Get("/role-on-channels", h.rolesOnChannels)
		r.Patch("/permissions", h.replacePermissions)
	})
}

func (h *Handler) modulesWithPermissions(w http.ResponseWriter, r *http.Request) {
	roleID := parseUUIDParam(r, "role_id")
	channelID := parseUUIDParam(r, "channel_id")

	tree, err := h.service.BuildPermissionTree(r.Context(), roleID, channelID)
	if err != nil {
		h.logger.Error("build permission tree", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "retrieved successfully", tree)
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	var roleID uuid.NullUUID
	if raw := r.URL.Query().Get("role_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid role_id", httpx.ErrValidation))
			return
		}
		roleID = uuid.NullUUID{UUID: id, Valid: true}
	}

	groups, err := h.service.Permissions(r.Context(), roleID)
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "retrieved successfully", groups)
}

func (h *Handler) rolesOnChannels(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.service.RolesOnChannels(r.Context())
	if err != nil {
		h.logger.Error("list roles on channels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "retrieved successfully", pairs)
}

type replacePermissionsRequest struct {
	RoleID      uuid.UUID    `json:"role_id" validate:"required"`
	ChannelID   uuid.UUID    `json:"channel_id" validate:"required"`
	Permissions []GrantInput `json:"permissions" validate:"dive"`
}

func (h *Handler) replacePermissions(w http.ResponseWriter, r *http.Request) {
	var req replacePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, "malformed request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	err := h.service.ReplacePermissions(r.Context(), req.RoleID, req.ChannelID, req.Permissions)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
			return
		}
		h.logger.Error("replace permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "updated successfully", nil)
}

func parseUUIDParam(r *http.Request, name string) uuid.UUID {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		return uuid.Nil
	}
	return id
}
