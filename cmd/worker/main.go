package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/dulpromax/catalog-api/internal/app"
	"github.com/dulpromax/catalog-api/internal/catalog"
	"github.com/dulpromax/catalog-api/internal/catalog/packs"
	"github.com/dulpromax/catalog-api/internal/catalog/products"
	jobmetrics "github.com/dulpromax/catalog-api/internal/jobs"
	"github.com/dulpromax/catalog-api/internal/observability"
	"github.com/dulpromax/catalog-api/internal/platform/cache"
	"github.com/dulpromax/catalog-api/internal/platform/db"
	"github.com/dulpromax/catalog-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
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

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL, logger, metrics)

	packRepo := packs.NewRepository(pool)
	repriceJob := jobs.NewRepriceJob(packRepo, packs.NewSynchronizer(packRepo), catalogCache, logger, jobMetrics)
	productService := products.NewService(products.NewRepository(pool), catalogCache, logger)
	warmupJob := jobs.NewWarmupJob(productService, logger, jobMetrics)

	repriceTask, err := jobs.NewRepriceTask("", time.Time{})
	if err != nil {
		logger.Error("build reprice task", slog.Any("error", err))
		os.Exit(1)
	}
	warmTask, err := jobs.NewWarmTask(0)
	if err != nil {
		logger.Error("build warm task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: jobs.RedisOpt(cfg.RedisAddr),
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRepriceCatalog, Handler: repriceJob.Handle},
			{Type: jobs.TaskWarmCatalog, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RepriceCron, Task: repriceTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/15 * * * *", Task: warmTask, Options: []asynq.Option{asynq.MaxRetry(1), asynq.Unique(10 * time.Minute)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("starting worker metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
