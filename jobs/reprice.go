package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/dulpromax/catalog-api/internal/jobs"
)

// ProductLister enumerates the products that own at least one pack.
type ProductLister interface {
	ProductsWithPacks(ctx context.Context) ([]string, error)
}

// PriceSyncer recomputes one product's price from its active packs.
type PriceSyncer interface {
	Sync(ctx context.Context, productID string) (price float64, updated bool, err error)
}

// CacheInvalidator drops cached catalog listings.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// RepriceResult summarises one reprice run.
type RepriceResult struct {
	Updated   int
	Unchanged int
	Failed    int
}

// RepriceJob reconciles product prices with their packs. It repairs drift
// left behind by pack mutations whose best-effort sync failed.
type RepriceJob struct {
	Products ProductLister
	Syncer   PriceSyncer
	Cache    CacheInvalidator
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewRepriceJob wires dependencies for the reprice handler.
func NewRepriceJob(products ProductLister, syncer PriceSyncer, cache CacheInvalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *RepriceJob {
	return &RepriceJob{Products: products, Syncer: syncer, Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes TaskRepriceCatalog tasks.
func (j *RepriceJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Products == nil || j.Syncer == nil {
		return errors.New("reprice: dependencies not configured")
	}
	var payload RepricePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Run(ctx, payload.ProductID)
	return err
}

// Run reprices one product, or all products with packs when productID is
// empty. Per-product failures are counted and do not stop the run; the
// returned error reports that at least one product failed.
func (j *RepriceJob) Run(ctx context.Context, productID string) (result RepriceResult, err error) {
	tracker := j.Metrics.Track(TaskRepriceCatalog)
	defer func() {
		err = tracker.End(err)
		j.Metrics.AddProducts(TaskRepriceCatalog, "updated", result.Updated)
		j.Metrics.AddProducts(TaskRepriceCatalog, "unchanged", result.Unchanged)
		j.Metrics.AddProducts(TaskRepriceCatalog, "failed", result.Failed)
	}()

	logger := j.logger().With(slog.String("job", TaskRepriceCatalog))
	start := time.Now()

	ids := []string{productID}
	if productID == "" {
		ids, err = j.Products.ProductsWithPacks(ctx)
		if err != nil {
			logger.Error("list products with packs", slog.Any("error", err))
			return result, fmt.Errorf("reprice: list products: %w", err)
		}
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		price, updated, syncErr := j.Syncer.Sync(ctx, id)
		switch {
		case syncErr != nil:
			result.Failed++
			logger.Warn("reprice product", slog.String("product_id", id), slog.Any("error", syncErr))
		case updated:
			result.Updated++
			logger.Debug("repriced product", slog.String("product_id", id), slog.Float64("price", price))
		default:
			result.Unchanged++
		}
	}

	if result.Updated > 0 && j.Cache != nil {
		j.Cache.Invalidate(ctx)
	}
	logger.Info("completed reprice",
		slog.Int("updated", result.Updated),
		slog.Int("unchanged", result.Unchanged),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", time.Since(start)))
	if result.Failed > 0 {
		return result, fmt.Errorf("reprice: %d of %d products failed", result.Failed, len(ids))
	}
	return result, nil
}

func (j *RepriceJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
