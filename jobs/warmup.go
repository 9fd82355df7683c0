package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/dulpromax/catalog-api/internal/catalog/products"
	jobmetrics "github.com/dulpromax/catalog-api/internal/jobs"
)

const (
	defaultWarmPages = 3
	maxWarmPages     = 20
	warmPageTimeout  = 20 * time.Second
)

// ListingLoader serves catalog listings through the listing cache.
type ListingLoader interface {
	List(ctx context.Context, filters products.ListFilters) (products.ListResponse, error)
}

// WarmupJob pre-populates the public catalog listing cache so the first
// storefront requests after a version bump hit Redis.
type WarmupJob struct {
	Listings ListingLoader
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(listings ListingLoader, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{Listings: listings, Logger: logger, Metrics: metrics}
}

// Handle processes TaskWarmCatalog tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Listings == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	var payload WarmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Run(ctx, payload.Pages)
	return err
}

// Run loads catalog listing pages 1..pages and stops early after the last
// page with data. It returns the number of pages warmed.
func (j *WarmupJob) Run(ctx context.Context, pages int) (warmed int, err error) {
	if pages <= 0 {
		pages = defaultWarmPages
	}
	if pages > maxWarmPages {
		pages = maxWarmPages
	}
	tracker := j.Metrics.Track(TaskWarmCatalog)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.String("job", TaskWarmCatalog))
	for page := 1; page <= pages; page++ {
		pageCtx, cancel := context.WithTimeout(ctx, warmPageTimeout)
		resp, listErr := j.Listings.List(pageCtx, products.ListFilters{
			Page:    page,
			PerPage: products.DefaultPerPage,
			Catalog: true,
		})
		cancel()
		if listErr != nil {
			logger.Error("warm catalog page", slog.Int("page", page), slog.Any("error", listErr))
			return warmed, listErr
		}
		warmed++
		if page*resp.PerPage >= resp.Total {
			break
		}
	}
	logger.Info("completed catalog warmup", slog.Int("pages", warmed))
	return warmed, nil
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
