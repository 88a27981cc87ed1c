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

	"github.com/argus-admin/argus-admin/internal/app"
	"github.com/argus-admin/argus-admin/internal/auth"
	"github.com/argus-admin/argus-admin/internal/catalog/actions"
	"github.com/argus-admin/argus-admin/internal/catalog/channels"
	"github.com/argus-admin/argus-admin/internal/catalog/modules"
	"github.com/argus-admin/argus-admin/internal/catalog/roles"
	"github.com/argus-admin/argus-admin/internal/catalog/submodules"
	"github.com/argus-admin/argus-admin/internal/payments"
	"github.com/argus-admin/argus-admin/internal/platform/cache"
	"github.com/argus-admin/argus-admin/internal/platform/db"
	"github.com/argus-admin/argus-admin/internal/products"
	"github.com/argus-admin/argus-admin/internal/products/categories"
	"github.com/argus-admin/argus-admin/internal/rbac"
	"github.com/argus-admin/argus-admin/internal/users"
	"github.com/argus-admin/argus-admin/jobs"
)

func main() {
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
	defer redisClient.Close()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer jobClient.Close()

	rbacStore := rbac.NewPGStore(pool)
	rbacService := rbac.NewService(rbacStore)
	evaluator := rbac.NewEvaluator(rbacStore)
	rbacMiddleware := rbac.Middleware{Evaluator: evaluator, Logger: logger}
	rbacHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, auth.TokenConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshSecret: cfg.JWTRefreshSecret,
		RefreshTTL:    cfg.JWTRefreshTTL,
	})
	authHandler := auth.NewHandler(logger, authService, rbacService)
	authenticator := &auth.Authenticator{Service: authService}

	actionsHandler := actions.NewHandler(logger, actions.NewService(actions.NewRepository(pool)), rbacMiddleware)
	channelsHandler := channels.NewHandler(logger, channels.NewService(channels.NewRepository(pool)), rbacMiddleware)
	rolesHandler := roles.NewHandler(logger, roles.NewService(roles.NewRepository(pool)), rbacMiddleware)
	modulesHandler := modules.NewHandler(logger, modules.NewService(modules.NewRepository(pool)), rbacMiddleware)
	subModulesHandler := submodules.NewHandler(logger, submodules.NewService(submodules.NewRepository(pool)), rbacMiddleware)

	usersService := users.NewService(logger, users.NewRepository(pool), jobClient)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	productsHandler := products.NewHandler(logger, products.NewService(products.NewRepository(pool)), rbacMiddleware)

	categoryCache := cache.NewStore(redisClient, "product_category", cfg.CategoryCacheTTL)
	categoriesService := categories.NewService(logger, categories.NewRepository(pool), categoryCache)
	categoriesHandler := categories.NewHandler(logger, categoriesService, rbacMiddleware)

	var paymentsHandler *payments.Handler
	if cfg.StripeSecretKey != "" {
		paymentsService := payments.NewService(payments.NewStripeGateway(cfg.StripeSecretKey))
		paymentsHandler = payments.NewHandler(logger, paymentsService, rbacMiddleware)
	} else {
		logger.Warn("stripe secret key missing, payment routes disabled")
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Authenticator:     authenticator,
		AuthHandler:       authHandler,
		RBACHandler:       rbacHandler,
		ActionsHandler:    actionsHandler,
		ChannelsHandler:   channelsHandler,
		RolesHandler:      rolesHandler,
		ModulesHandler:    modulesHandler,
		SubModulesHandler: subModulesHandler,
		UsersHandler:      usersHandler,
		ProductsHandler:   productsHandler,
		CategoriesHandler: categoriesHandler,
		PaymentsHandler:   paymentsHandler,
		JobHandler:        jobHandler,
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
