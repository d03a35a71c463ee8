package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/auth"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/authz"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/categories"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/products"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/suppliers"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/inventory"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/observability"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/orders"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/reports"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/users"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Authz  authz.Middleware

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	CategoriesHandler *categories.Handler
	SuppliersHandler  *suppliers.Handler
	ProductsHandler   *products.Handler
	InventoryHandler  *inventory.Handler
	OrdersHandler     *orders.Handler
	ReportsHandler    *reports.Handler
	JobsHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Authz:   params.Authz,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/purchases", params.OrdersHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.Authz.Require(authz.ActionReportsView))
			params.JobsHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
