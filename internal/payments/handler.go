package payments

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

// Payment routes only need an authenticated caller with any role; the fee
// is charged against the caller's own customer record.
var gate = rbac.Requirement{
	Roles: []string{
		rbac.RoleSuperAdmin, rbac.RoleAdmin, rbac.RoleDeveloper, rbac.RoleUser,
	},
	AllowListOnly: true,
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(gate))
		r.Post("/intent", h.createIntent)
		r.Post("/intent/{id}/confirm", h.confirmIntent)
		r.Post("/method", h.createMethod)
		r.Post("/customer", h.createCustomer)
	})
}

type createIntentRequest struct {
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"omitempty,len=3"`
	CustomerID string `json:"customer_id"`
}

type confirmIntentRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

type createMethodRequest struct {
	Token string `json:"token" validate:"required"`
}

type createCustomerRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=200"`
}

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	intent, err := h.service.CreateIntent(req.Amount, req.Currency, req.CustomerID)
	if err != nil {
		h.logger.Error("create payment intent", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Payment Provider Error", "could not create payment intent")
		return
	}
	httpx.Data(w, http.StatusCreated, "payment intent created", intent)
}

func (h *Handler) confirmIntent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req confirmIntentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	intent, err := h.service.ConfirmIntent(id, req.PaymentMethodID)
	if err != nil {
		h.logger.Error("confirm payment intent", slog.String("intent", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Payment Provider Error", "could not confirm payment intent")
		return
	}
	httpx.Data(w, http.StatusOK, "payment intent confirmed", intent)
}

func (h *Handler) createMethod(w http.ResponseWriter, r *http.Request) {
	var req createMethodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	id, err := h.service.CreateMethod(req.Token)
	if err != nil {
		h.logger.Error("create payment method", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Payment Provider Error", "could not create payment method")
		return
	}
	httpx.Data(w, http.StatusCreated, "payment method created", map[string]string{"payment_method_id": id})
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	id, err := h.service.CreateCustomer(req.Email, req.Name)
	if err != nil {
		h.logger.Error("create stripe customer", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Payment Provider Error", "could not create customer")
		return
	}
	httpx.Data(w, http.StatusCreated, "customer created", map[string]string{"customer_id": id})
}
