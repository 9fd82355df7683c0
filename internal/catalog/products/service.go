package products

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dulpromax/catalog-api/internal/catalog"
	"github.com/dulpromax/catalog-api/internal/catalog/slug"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

const (
	DefaultPerPage = 10

	shortDescriptionLen = 100
	expandConcurrency   = 8
	syncTimeout         = 5 * time.Second
)

// PriceSyncer recomputes a product price from its active packs.
// *packs.Synchronizer satisfies it.
type PriceSyncer interface {
	Sync(ctx context.Context, productID string) (float64, bool, error)
}

type Service struct {
	repo   Repository
	slugs  *slug.Allocator
	cache  *catalog.Cache
	prices PriceSyncer
	logger *slog.Logger
}

func NewService(repo Repository, cache *catalog.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, slugs: slug.NewAllocator(repo), cache: cache, logger: logger}
}

// WithPriceSyncer makes Update restore the pack-derived price after the
// payload price is written.
func (s *Service) WithPriceSyncer(prices PriceSyncer) *Service {
	s.prices = prices
	return s
}

// List returns one page of products. Catalog mode hides inactive products
// and inactive packs; catalog mode and expand=packs both attach packs and
// the minimum active pack price.
func (s *Service) List(ctx context.Context, filters ListFilters) (ListResponse, error) {
	if err := httpx.Validate(filters); err != nil {
		return ListResponse{}, err
	}
	if filters.CategoryID != "" && !validID(filters.CategoryID) {
		return ListResponse{Data: []Product{}, Page: filters.Page, PerPage: filters.PerPage}, nil
	}
	var resp ListResponse
	err := s.cache.FetchJSON(ctx, &resp, func(ctx context.Context) (any, error) {
		return s.load(ctx, filters)
	}, cacheKey(filters)...)
	return resp, err
}

func (s *Service) load(ctx context.Context, filters ListFilters) (ListResponse, error) {
	list, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return ListResponse{}, err
	}
	for i := range list {
		list[i].Packs = []PackSummary{}
	}
	if filters.Catalog || filters.ExpandPacks {
		s.expand(ctx, list, filters.Catalog)
	}
	return ListResponse{Data: list, Total: total, Page: filters.Page, PerPage: filters.PerPage}, nil
}

// expand attaches packs concurrently. A failed lookup leaves that product
// with no packs and no min_price instead of failing the page.
func (s *Service) expand(ctx context.Context, list []Product, activeOnly bool) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(expandConcurrency)
	for i := range list {
		item := &list[i]
		g.Go(func() error {
			packs, err := s.repo.Packs(ctx, item.ID, activeOnly)
			if err != nil {
				s.logger.Warn("expand product packs failed", slog.String("product_id", item.ID), slog.Any("error", err))
				return nil
			}
			item.Packs = packs
			item.MinPrice = MinActivePrice(packs)
			return nil
		})
	}
	_ = g.Wait()
}

// MinActivePrice returns the lowest price among active packs, or nil.
func MinActivePrice(packs []PackSummary) *float64 {
	var lowest *float64
	for _, p := range packs {
		if !p.IsActive {
			continue
		}
		if lowest == nil || p.Price < *lowest {
			price := p.Price
			lowest = &price
		}
	}
	return lowest
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if !validID(id) {
		return Product{}, notFound()
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	p.Packs = []PackSummary{}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	if err := validate(in); err != nil {
		return Product{}, err
	}
	name := strings.TrimSpace(in.Name)
	allocated, err := s.slugs.Allocate(ctx, name, "")
	if err != nil {
		return Product{}, err
	}
	p := Product{
		Slug:             allocated,
		Name:             name,
		Description:      in.Description,
		ShortDescription: shortDescription(in.Description),
		Price:            in.Price,
		StockQuantity:    in.StockQuantity,
		CategoryID:       in.CategoryID,
		Images:           []string{},
		Attributes:       map[string]any{},
		IsActive:         true,
		IsFeatured:       false,
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.cache.Invalidate(ctx)
	created.Packs = []PackSummary{}
	return created, nil
}

// Update rewrites the editable fields. The slug follows the name and a
// product keeps its own slug when the name is unchanged.
func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	if !validID(id) {
		return Product{}, notFound()
	}
	if err := validate(in); err != nil {
		return Product{}, err
	}
	name := strings.TrimSpace(in.Name)
	allocated, err := s.slugs.Allocate(ctx, name, id)
	if err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, id, Product{
		Slug:             allocated,
		Name:             name,
		Description:      in.Description,
		ShortDescription: shortDescription(in.Description),
		Price:            in.Price,
		StockQuantity:    in.StockQuantity,
		CategoryID:       in.CategoryID,
	})
	if err != nil {
		return Product{}, err
	}
	if price, ok := s.syncPrice(ctx, id); ok {
		updated.Price = price
	}
	s.cache.Invalidate(ctx)
	updated.Packs = []PackSummary{}
	return updated, nil
}

// syncPrice runs after the update committed and never fails the request.
// ok is false when the product has no active packs or the sync failed.
func (s *Service) syncPrice(ctx context.Context, id string) (float64, bool) {
	if s.prices == nil {
		return 0, false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), syncTimeout)
	defer cancel()
	price, synced, err := s.prices.Sync(ctx, id)
	if err != nil {
		s.logger.Warn("product price sync failed", slog.String("product_id", id), slog.Any("error", err))
		return 0, false
	}
	return price, synced
}

func (s *Service) Delete(ctx context.Context, id string) (Product, error) {
	if !validID(id) {
		return Product{}, notFound()
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.cache.Invalidate(ctx)
	deleted.Packs = []PackSummary{}
	return deleted, nil
}

func validate(in Input) error {
	if err := httpx.Validate(in); err != nil {
		return err
	}
	if strings.TrimSpace(in.Name) == "" {
		return httpx.Wrap(httpx.ErrValidation, "name is required", nil)
	}
	return nil
}

func shortDescription(desc *string) *string {
	if desc == nil || *desc == "" {
		return nil
	}
	s := *desc
	if utf8.RuneCountInString(s) > shortDescriptionLen {
		s = string([]rune(s)[:shortDescriptionLen])
	}
	return &s
}

func cacheKey(f ListFilters) []string {
	return []string{
		"catalog", "products",
		"p" + strconv.Itoa(f.Page),
		"n" + strconv.Itoa(f.PerPage),
		"c" + f.CategoryID,
		"q" + strconv.Quote(f.Search),
		"m" + strconv.FormatBool(f.Catalog),
		"x" + strconv.FormatBool(f.ExpandPacks),
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound() error {
	return httpx.Wrap(httpx.ErrNotFound, "Product not found", nil)
}
