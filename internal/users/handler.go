package users

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

var managedRoles = []string{rbac.RoleSuperAdmin, rbac.RoleAdmin}

// userGate requires a fine-grained grant under User Management / User.
func userGate(action string) rbac.Requirement {
	return rbac.Requirement{
		Action:    action,
		Module:    rbac.ModuleUserManagement,
		SubModule: rbac.SubModuleUser,
		Channel:   rbac.ChannelWeb,
		Roles:     managedRoles,
	}
}

// roleAssignGate covers the dedicated role-assignment sub-module.
func roleAssignGate(action string) rbac.Requirement {
	return rbac.Requirement{
		Action:    action,
		Module:    rbac.ModuleUserManagement,
		SubModule: rbac.SubModuleUserRoleAssign,
		Channel:   rbac.ChannelWeb,
		Roles:     managedRoles,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(userGate(rbac.ActionView))).Get("/", h.list)
	r.With(h.rbac.Require(userGate(rbac.ActionView))).Get("/send-email-users", h.sendEmailUsers)
	r.With(h.rbac.Require(userGate(rbac.ActionView))).Get("/{id}", h.get)
	r.With(h.rbac.Require(userGate(rbac.ActionCreate))).Post("/", h.create)
	r.With(h.rbac.Require(userGate(rbac.ActionUpdate))).Put("/{id}", h.update)
	r.With(h.rbac.Require(userGate(rbac.ActionDelete))).Delete("/{id}", h.delete)
	r.With(h.rbac.Require(roleAssignGate(rbac.ActionUpdate))).Put("/{id}/role", h.assignRole)
}

type createUserRequest struct {
	Username string     `json:"username" validate:"required,max=100"`
	Email    string     `json:"email" validate:"required,email"`
	Phone    string     `json:"phone" validate:"max=32"`
	Password string     `json:"password" validate:"required,min=8"`
	RoleID   *uuid.UUID `json:"role_id"`
}

type updateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"phone" validate:"max=32"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

type assignRoleRequest struct {
	RoleID *uuid.UUID `json:"role_id"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters := shared.ParseListFilters(r.URL.Query())
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "users fetched", shared.NewPaged(items, total, filters))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid user id", httpx.ErrValidation))
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "user fetched", user)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	in := NewUser{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	}
	if req.RoleID != nil {
		in.RoleID = uuid.NullUUID{UUID: *req.RoleID, Valid: true}
	}
	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, "user created", user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid user id", httpx.ErrValidation))
		return
	}
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	in := UpdateUser{Email: req.Email, Phone: req.Phone, Password: req.Password}
	if err := h.service.Update(r.Context(), id, in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "user updated", nil)
}

func (h *Handler) assignRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid user id", httpx.ErrValidation))
		return
	}
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	var roleID uuid.NullUUID
	if req.RoleID != nil {
		roleID = uuid.NullUUID{UUID: *req.RoleID, Valid: true}
	}
	if err := h.service.AssignRole(r.Context(), id, roleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "role assigned", nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid user id", httpx.ErrValidation))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "user deleted", nil)
}

type sendEmailUsersResponse struct {
	Queued int `json:"queued"`
}

// sendEmailUsers fans one announcement out to every live account via the
// mail queue.
func (h *Handler) sendEmailUsers(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		subject = "A message from the Argus admin team"
	}
	body := r.URL.Query().Get("body")
	if body == "" {
		body = "Hello! This is a notification from the Argus admin backend."
	}
	queued, err := h.service.SendEmailToUsers(r.Context(), subject, body)
	if err != nil {
		h.logger.Error("send email users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "emails queued", sendEmailUsersResponse{Queued: queued})
}
