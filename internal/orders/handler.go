package orders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/authz"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/platform/httpx"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Handler wires HTTP endpoints for the purchase workflow.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), authz: mw}
}

// MountRoutes registers purchase routes. Customers may place, view and cancel
// their own orders; staff edits go through the update policy.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionPurchasesView))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionPurchasesCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionPurchasesCancel))
		r.Post("/{id}/cancel", h.cancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionPurchasesUpdate))
		r.Put("/{id}", h.update)
	})
}

type createPurchaseItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type createPurchaseRequest struct {
	Items           []createPurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
	Status          *string                     `json:"status,omitempty"`
	PaymentMethod   *string                     `json:"payment_method,omitempty"`
	PaymentStatus   *string                     `json:"payment_status,omitempty"`
	ShippingAddress *string                     `json:"shipping_address,omitempty"`
	Notes           *string                     `json:"notes,omitempty"`
}

type updatePurchaseRequest struct {
	Status          *string `json:"status,omitempty"`
	PaymentMethod   *string `json:"payment_method,omitempty"`
	PaymentStatus   *string `json:"payment_status,omitempty"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req createPurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	input := CreateInput{
		UserID:          principal.UserID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		input.Status = &status
	}
	if req.PaymentStatus != nil {
		ps := PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &ps
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, CreateItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	purchase, err := h.service.Create(r.Context(), input, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.logger.Warn("create purchase", slog.Int64("user_id", principal.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"purchase": purchase})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	q := r.URL.Query()
	page, perPage := shared.PageParams(r)
	filter := ListFilter{
		Status:  Status(q.Get("status")),
		Page:    page,
		PerPage: perPage,
	}
	if principal.IsStaff() {
		if v, err := strconv.ParseInt(q.Get("user_id"), 10, 64); err == nil {
			filter.UserID = v
		}
	}
	purchases, total, err := h.service.List(r.Context(), filter, principal)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pagination := shared.NewPagination(filter.Page, filter.PerPage, total)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"purchases":    purchases,
		"total":        pagination.Total,
		"pages":        pagination.TotalPages,
		"current_page": pagination.Page,
		"per_page":     pagination.PerPage,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	purchase, err := h.service.Get(r.Context(), id, principal)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchase": purchase})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	purchase, err := h.service.Cancel(r.Context(), id, principal)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":  "purchase cancelled",
		"purchase": purchase,
	})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updatePurchaseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	input := UpdateInput{PaymentMethod: req.PaymentMethod, ShippingAddress: req.ShippingAddress, Notes: req.Notes}
	if req.Status != nil {
		status := Status(*req.Status)
		input.Status = &status
	}
	if req.PaymentStatus != nil {
		ps := PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &ps
	}
	purchase, err := h.service.Update(r.Context(), id, input, principal)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"purchase": purchase})
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrInvalidInput
	}
	return id, nil
}
