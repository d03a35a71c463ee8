package inventory

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

// Handler wires HTTP endpoints for stock management. All inventory routes are
// staff-facing.
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

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionInventoryView))
		r.Get("/", h.list)
		r.Get("/alerts", h.alerts)
		r.Get("/{productID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionInventoryEdit))
		r.Post("/", h.create)
		r.Put("/{productID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionInventoryRestock))
		r.Post("/{productID}/restock", h.restock)
	})
}

type createRecordRequest struct {
	ProductID         int64 `json:"product_id" validate:"required,gt=0"`
	QuantityInStock   int   `json:"quantity_in_stock" validate:"gte=0"`
	MinimumStockLevel int   `json:"minimum_stock_level" validate:"gte=0"`
	MaximumStockLevel int   `json:"maximum_stock_level" validate:"gte=0"`
}

type updateRecordRequest struct {
	QuantityInStock   *int `json:"quantity_in_stock,omitempty"`
	MinimumStockLevel *int `json:"minimum_stock_level,omitempty"`
	MaximumStockLevel *int `json:"maximum_stock_level,omitempty"`
}

type restockRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := shared.PageParams(r)
	filter := ListFilter{
		LowStockOnly:   q.Get("low_stock_only") == "true",
		OutOfStockOnly: q.Get("out_of_stock_only") == "true",
		Page:           page,
		PerPage:        perPage,
	}
	records, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list inventory", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pagination := shared.NewPagination(filter.Page, filter.PerPage, total)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"inventory":    records,
		"total":        pagination.Total,
		"pages":        pagination.TotalPages,
		"current_page": pagination.Page,
		"per_page":     pagination.PerPage,
	})
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.Alerts(r.Context())
	if err != nil {
		h.logger.Error("inventory alerts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, alerts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.GetByProduct(r.Context(), productID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"inventory": rec})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	rec, err := h.service.CreateRecord(r.Context(), CreateInput{
		ProductID:         req.ProductID,
		QuantityInStock:   req.QuantityInStock,
		MinimumStockLevel: req.MinimumStockLevel,
		MaximumStockLevel: req.MaximumStockLevel,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"inventory": rec})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	rec, err := h.service.UpdateLevels(r.Context(), productID, UpdateInput{
		QuantityInStock:   req.QuantityInStock,
		MinimumStockLevel: req.MinimumStockLevel,
		MaximumStockLevel: req.MaximumStockLevel,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"inventory": rec})
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req restockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	rec, err := h.service.Restock(r.Context(), productID, req.Quantity, principal.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":   "stock replenished",
		"inventory": rec,
	})
}

func productIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrInvalidInput
	}
	return id, nil
}
