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

	"github.com/dulpromax/catalog-api/internal/app"
	"github.com/dulpromax/catalog-api/internal/auth"
	"github.com/dulpromax/catalog-api/internal/catalog"
	"github.com/dulpromax/catalog-api/internal/catalog/categories"
	"github.com/dulpromax/catalog-api/internal/catalog/packs"
	"github.com/dulpromax/catalog-api/internal/catalog/products"
	"github.com/dulpromax/catalog-api/internal/observability"
	"github.com/dulpromax/catalog-api/internal/platform/cache"
	"github.com/dulpromax/catalog-api/internal/platform/db"
	"github.com/dulpromax/catalog-api/internal/pricing"
	"github.com/dulpromax/catalog-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	if cfg.SupabaseJWTSecret == "" {
		logger.Warn("SUPABASE_JWT_SECRET is not set; authenticated routes will answer 500")
	}
	if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
		logger.Warn("SUPABASE_URL or SUPABASE_ANON_KEY is not set; /products/prices will answer 500")
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	metrics := observability.NewMetrics()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, listing cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL, logger, metrics)

	profiles := auth.NewRepository(dbpool)
	gate := auth.NewGate(
		auth.NewTokenAuthenticator(cfg.SupabaseJWTSecret, cfg.JWTAlgorithm),
		auth.NewResolver(auth.DefaultStrategies(profiles)...),
		logger,
	)

	categoryService := categories.NewService(categories.NewRepository(dbpool), catalogCache)
	packRepo := packs.NewRepository(dbpool)
	synchronizer := packs.NewSynchronizer(packRepo)
	packService := packs.NewService(packRepo, synchronizer, catalogCache, metrics, logger)

	productService := products.NewService(products.NewRepository(dbpool), catalogCache, logger).
		WithPriceSyncer(synchronizer)

	pricingRepo := pricing.NewRepository(dbpool)
	pricingHandler := pricing.NewHandler(
		logger,
		pricing.NewService(pricingRepo),
		pricing.NewQuoter(pricingRepo),
		pricing.NewProxy(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.ProxyTimeout, metrics),
		gate,
		app.PriceLimiter(cfg.PriceRateLimit),
	)

	inspector := asynq.NewInspector(jobs.RedisOpt(cfg.RedisAddr))
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ProfileHandler:    auth.NewHandler(gate),
		CategoriesHandler: categories.NewHandler(logger, categoryService, gate),
		ProductsHandler:   products.NewHandler(logger, productService, gate),
		PacksHandler:      packs.NewHandler(logger, packService, gate),
		PricingHandler:    pricingHandler,
		JobHandler:        jobs.NewHandler(inspector, logger),
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
