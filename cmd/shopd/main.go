package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/app"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/auth"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/authz"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/categories"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/products"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/catalog/suppliers"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/inventory"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/observability"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/orders"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/platform/cache"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/platform/db"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/reports"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/shared"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/internal/users"
	"github.com/mohamedabdul9977/fitness-wear-shop-management-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "shop_session", cfg.SessionTTL)
	authzMiddleware := authz.Middleware{Sessions: sessionManager, Logger: logger}

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, authzMiddleware)

	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, usersService, sessionManager, authzMiddleware)

	categoriesRepo := categories.NewRepository(pool)
	categoriesService := categories.NewService(categoriesRepo)
	categoriesHandler := categories.NewHandler(logger, categoriesService, authzMiddleware)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService, authzMiddleware)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, categoriesRepo, suppliersRepo)
	productsHandler := products.NewHandler(logger, productsService, authzMiddleware)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, authzMiddleware)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, productsService, idempotencyStore, auditLogger, logger)
	ordersHandler := orders.NewHandler(logger, ordersService, authzMiddleware)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, redisClient, logger)
	reportsHandler := reports.NewHandler(logger, reportsService, authzMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Authz:             authzMiddleware,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		CategoriesHandler: categoriesHandler,
		SuppliersHandler:  suppliersHandler,
		ProductsHandler:   productsHandler,
		InventoryHandler:  inventoryHandler,
		OrdersHandler:     ordersHandler,
		ReportsHandler:    reportsHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
