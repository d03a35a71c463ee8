package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/authz"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/platform/httpx"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
)

// Handler wires HTTP endpoints for the products module.
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

// MountRoutes registers product routes. Browsing is public; mutations follow
// the authorization policy.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionProductsCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionProductsUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.ActionProductsDelete))
		r.Delete("/{id}", h.remove)
	})
}

type createProductRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Description  *string         `json:"description,omitempty"`
	SKU          string          `json:"sku" validate:"required,max=50"`
	Brand        *string         `json:"brand,omitempty"`
	Size         *string         `json:"size,omitempty"`
	Color        *string         `json:"color,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	CategoryID   int64           `json:"category_id" validate:"required,gt=0"`
	SupplierID   int64           `json:"supplier_id" validate:"required,gt=0"`
}

type updateProductRequest struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Brand        *string         `json:"brand,omitempty"`
	Size         *string         `json:"size,omitempty"`
	Color        *string         `json:"color,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ImageURL     *string         `json:"image_url,omitempty"`
	CategoryID   int64           `json:"category_id"`
	SupplierID   int64           `json:"supplier_id"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	result, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pagination := shared.NewPagination(filter.Page, filter.PerPage, total)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":     result,
		"total":        pagination.Total,
		"pages":        pagination.TotalPages,
		"current_page": pagination.Page,
		"per_page":     pagination.PerPage,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	product, err := h.service.Create(r.Context(), Product{
		Name:         req.Name,
		Description:  req.Description,
		SKU:          req.SKU,
		Brand:        req.Brand,
		Size:         req.Size,
		Color:        req.Color,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		ImageURL:     req.ImageURL,
		CategoryID:   req.CategoryID,
		SupplierID:   req.SupplierID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"product": product})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrInvalidInput)
		return
	}
	product, err := h.service.Update(r.Context(), id, Product{
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Size:         req.Size,
		Color:        req.Color,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		ImageURL:     req.ImageURL,
		CategoryID:   req.CategoryID,
		SupplierID:   req.SupplierID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "product deleted"})
}

func filterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	page, perPage := shared.PageParams(r)
	filter := ListFilter{
		Search:      q.Get("search"),
		Size:        q.Get("size"),
		Color:       q.Get("color"),
		Brand:       q.Get("brand"),
		InStockOnly: q.Get("in_stock_only") == "true",
		Page:        page,
		PerPage:     perPage,
	}
	if v, err := strconv.ParseInt(q.Get("category_id"), 10, 64); err == nil {
		filter.CategoryID = v
	}
	if v, err := strconv.ParseInt(q.Get("supplier_id"), 10, 64); err == nil {
		filter.SupplierID = v
	}
	if v, err := decimal.NewFromString(q.Get("min_price")); err == nil {
		filter.MinPrice = &v
	}
	if v, err := decimal.NewFromString(q.Get("max_price")); err == nil {
		filter.MaxPrice = &v
	}
	return filter
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.ErrInvalidInput
	}
	return id, nil
}
