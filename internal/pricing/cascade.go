package pricing

import (
	"context"

	"github.com/google/uuid"

	"github.com/dulpromax/catalog-api/internal/auth"
	"github.com/dulpromax/catalog-api/internal/platform/httpx"
)

// Source names the tier that produced a resolved price.
type Source string

const (
	SourceOverride Source = "override"
	SourceSegment  Source = "segment"
	SourceBase     Source = "base"
)

// Tiers are the candidate prices for one product and one caller. Base is
// the product price, already tracking the cheapest active pack.
type Tiers struct {
	Base     float64
	Segment  *float64
	Override *float64
}

// Resolve applies the precedence override, then segment, then base.
func Resolve(t Tiers) (float64, Source) {
	switch {
	case t.Override != nil:
		return *t.Override, SourceOverride
	case t.Segment != nil:
		return *t.Segment, SourceSegment
	default:
		return t.Base, SourceBase
	}
}

// Quote is the response of the single-product price endpoint.
type Quote struct {
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Source    Source  `json:"source"`
}

// TierStore loads the tiers for a product as seen by an organization.
// A nil organization yields only the base tier.
type TierStore interface {
	Tiers(ctx context.Context, productID string, organizationID *string) (Tiers, error)
}

// Quoter resolves prices in-process for the caller's own organization.
type Quoter struct {
	store TierStore
}

func NewQuoter(store TierStore) *Quoter {
	return &Quoter{store: store}
}

func (q *Quoter) Quote(ctx context.Context, caller auth.Caller, productID string) (Quote, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return Quote{}, httpx.Wrap(httpx.ErrNotFound, "Product not found", nil)
	}
	tiers, err := q.store.Tiers(ctx, productID, caller.OrganizationID)
	if err != nil {
		return Quote{}, err
	}
	price, source := Resolve(tiers)
	return Quote{ProductID: productID, Price: price, Source: source}, nil
}
