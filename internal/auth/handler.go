package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/argus-admin/argus-admin/internal/platform/httpx"
	"github.com/argus-admin/argus-admin/internal/rbac"
)

// Handler wires HTTP endpoints for authentication flows. The login response
// embeds the role's grouped grants so the client can render its navigation
// without a second call.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	permissions *rbac.Service
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, permissions *rbac.Service) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		permissions: permissions,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/refresh-token", h.handleRefresh)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	TokenPair
	User        loginUser         `json:"user"`
	Permissions []rbac.GrantGroup `json:"permissions"`
}

type loginUser struct {
	ID       uuid.UUID     `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	RoleID   uuid.NullUUID `json:"role_id"`
	Role     string        `json:"role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid username or password")
		return
	}
	tokens, err := h.service.IssueTokens(user)
	if err != nil {
		h.logger.Error("issue tokens", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	var grants []rbac.GrantGroup
	if user.RoleID.Valid {
		grants, err = h.permissions.Permissions(r.Context(), user.RoleID)
		if err != nil {
			// Login still succeeds; the client can fetch permissions later.
			h.logger.Warn("load permissions for login", slog.Any("error", err))
			grants = nil
		}
	}

	httpx.Data(w, http.StatusOK, "logged in successfully", loginResponse{
		TokenPair: tokens,
		User: loginUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			RoleID:   user.RoleID,
			Role:     user.RoleName,
		},
		Permissions: grants,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired refresh token")
			return
		}
		h.logger.Error("refresh token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, "token refreshed", tokens)
}
