package categories

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dulpromax/catalog-api/internal/catalog"
	"github.com/dulpromax/catalog-api/internal/catalog/slug"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

type Service struct {
	repo  Repository
	slugs *slug.Allocator
	cache *catalog.Cache
}

func NewService(repo Repository, cache *catalog.Cache) *Service {
	return &Service{repo: repo, slugs: slug.NewAllocator(repo), cache: cache}
}

func (s *Service) List(ctx context.Context, activeOnly bool) (ListResponse, error) {
	var resp ListResponse
	mode := "all"
	if activeOnly {
		mode = "active"
	}
	err := s.cache.FetchJSON(ctx, &resp, func(ctx context.Context) (any, error) {
		list, err := s.repo.List(ctx, activeOnly)
		if err != nil {
			return nil, err
		}
		return ListResponse{Data: list, Total: len(list)}, nil
	}, "catalog", "categories", mode)
	return resp, err
}

func (s *Service) Get(ctx context.Context, id string) (Category, error) {
	if !validID(id) {
		return Category{}, notFound()
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Category, error) {
	c, err := s.build(ctx, in, "")
	if err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Category{}, err
	}
	s.cache.Invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Category, error) {
	if !validID(id) {
		return Category{}, notFound()
	}
	c, err := s.build(ctx, in, id)
	if err != nil {
		return Category{}, err
	}
	updated, err := s.repo.Update(ctx, id, c)
	if err != nil {
		return Category{}, err
	}
	s.cache.Invalidate(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (Category, error) {
	if !validID(id) {
		return Category{}, notFound()
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Category{}, err
	}
	s.cache.Invalidate(ctx)
	return deleted, nil
}

// build validates the payload and fills defaults. An explicit slug is kept
// as given; a missing one is allocated from the name.
func (s *Service) build(ctx context.Context, in Input, excludeID string) (Category, error) {
	if err := httpx.Validate(in); err != nil {
		return Category{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Category{}, httpx.Wrap(httpx.ErrValidation, "name is required", nil)
	}
	if in.ParentID != nil && excludeID != "" && *in.ParentID == excludeID {
		return Category{}, httpx.Wrap(httpx.ErrValidation, "category cannot be its own parent", nil)
	}

	c := Category{
		Name:        name,
		Slug:        slug.Base(in.Slug),
		Description: in.Description,
		ParentID:    in.ParentID,
		ImageURL:    in.ImageURL,
		IsActive:    true,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if c.Slug == "" {
		allocated, err := s.slugs.Allocate(ctx, name, excludeID)
		if err != nil {
			return Category{}, err
		}
		c.Slug = allocated
	}
	return c, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound() error {
	return httpx.Wrap(httpx.ErrNotFound, "Category not found", nil)
}
