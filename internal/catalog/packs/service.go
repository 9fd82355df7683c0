package packs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dulpromax/catalog-api/internal/catalog"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

const syncTimeout = 5 * time.Second

// SyncObserver is told about swallowed sync failures.
type SyncObserver interface {
	PackSyncFailed()
}

type Service struct {
	repo     Repository
	sync     *Synchronizer
	cache    *catalog.Cache
	observer SyncObserver
	logger   *slog.Logger
}

func NewService(repo Repository, sync *Synchronizer, cache *catalog.Cache, observer SyncObserver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, sync: sync, cache: cache, observer: observer, logger: logger}
}

func (s *Service) List(ctx context.Context, productID string) ([]Pack, error) {
	if !validID(productID) {
		return []Pack{}, nil
	}
	return s.repo.List(ctx, productID)
}

func (s *Service) Create(ctx context.Context, productID string, in Input) (Pack, error) {
	if err := httpx.Validate(in); err != nil {
		return Pack{}, err
	}
	if !validID(productID) {
		return Pack{}, productNotFound()
	}
	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return Pack{}, err
	}
	if !exists {
		return Pack{}, productNotFound()
	}
	created, err := s.repo.Create(ctx, productID, in)
	if err != nil {
		return Pack{}, err
	}
	s.afterMutation(ctx, productID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, productID, packID string, in Input) (Pack, error) {
	if err := httpx.Validate(in); err != nil {
		return Pack{}, err
	}
	if !validID(productID) || !validID(packID) {
		return Pack{}, packNotFound()
	}
	updated, err := s.repo.Update(ctx, productID, packID, in)
	if err != nil {
		return Pack{}, err
	}
	s.afterMutation(ctx, productID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, productID, packID string) (Pack, error) {
	if !validID(productID) || !validID(packID) {
		return Pack{}, packNotFound()
	}
	deleted, err := s.repo.Delete(ctx, productID, packID)
	if err != nil {
		return Pack{}, err
	}
	s.afterMutation(ctx, productID)
	return deleted, nil
}

// afterMutation runs once the pack write has committed; nothing in here may
// fail the request.
func (s *Service) afterMutation(ctx context.Context, productID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), syncTimeout)
	defer cancel()

	if _, _, err := s.sync.Sync(ctx, productID); err != nil {
		if errors.Is(err, ErrSyncFailed) {
			s.logger.Warn("pack price sync failed", slog.String("product_id", productID), slog.Any("error", err))
			if s.observer != nil {
				s.observer.PackSyncFailed()
			}
		} else {
			s.logger.Error("pack price sync", slog.String("product_id", productID), slog.Any("error", err))
		}
	}
	s.cache.Invalidate(ctx)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func productNotFound() error {
	return httpx.Wrap(httpx.ErrNotFound, "Product not found", nil)
}

func packNotFound() error {
	return httpx.Wrap(httpx.ErrNotFound, "Pack not found", nil)
}
