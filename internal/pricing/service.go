package pricing

import (
	"context"

	"github.com/google/uuid"

	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// Service manages segment prices and per-organization overrides.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListSegments(ctx context.Context, f SegmentFilter) ([]SegmentPrice, error) {
	if !optionalID(f.ProductID) || !optionalID(f.UserTypeID) {
		return []SegmentPrice{}, nil
	}
	return s.repo.ListSegments(ctx, f)
}

func (s *Service) CreateSegment(ctx context.Context, in SegmentInput) (SegmentPrice, error) {
	if err := httpx.Validate(in); err != nil {
		return SegmentPrice{}, err
	}
	return s.repo.CreateSegment(ctx, in)
}

func (s *Service) UpdateSegment(ctx context.Context, id string, in SegmentInput) (SegmentPrice, error) {
	if err := httpx.Validate(in); err != nil {
		return SegmentPrice{}, err
	}
	if !validID(id) {
		return SegmentPrice{}, httpx.Wrap(httpx.ErrNotFound, "Segment price not found", nil)
	}
	return s.repo.UpdateSegment(ctx, id, in)
}

func (s *Service) DeleteSegment(ctx context.Context, id string) error {
	if !validID(id) {
		return httpx.Wrap(httpx.ErrNotFound, "Segment price not found", nil)
	}
	return s.repo.DeleteSegment(ctx, id)
}

func (s *Service) ListOverrides(ctx context.Context, f OverrideFilter) ([]Override, error) {
	if !optionalID(f.ProductID) || !optionalID(f.OrganizationID) {
		return []Override{}, nil
	}
	return s.repo.ListOverrides(ctx, f)
}

func (s *Service) CreateOverride(ctx context.Context, in OverrideInput) (Override, error) {
	if err := httpx.Validate(in); err != nil {
		return Override{}, err
	}
	return s.repo.CreateOverride(ctx, in)
}

func (s *Service) UpdateOverride(ctx context.Context, id string, in OverrideInput) (Override, error) {
	if err := httpx.Validate(in); err != nil {
		return Override{}, err
	}
	if !validID(id) {
		return Override{}, httpx.Wrap(httpx.ErrNotFound, "Override not found", nil)
	}
	return s.repo.UpdateOverride(ctx, id, in)
}

func (s *Service) DeleteOverride(ctx context.Context, id string) error {
	if !validID(id) {
		return httpx.Wrap(httpx.ErrNotFound, "Override not found", nil)
	}
	return s.repo.DeleteOverride(ctx, id)
}

func (s *Service) UserTypes(ctx context.Context) ([]UserType, error) {
	return s.repo.ListUserTypes(ctx)
}

func (s *Service) Organizations(ctx context.Context) ([]Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func optionalID(id string) bool {
	return id == "" || validID(id)
}
