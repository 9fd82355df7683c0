package packs

import (
	"context"
	"errors"
	"fmt"
)

// ErrSyncFailed marks errors from Synchronizer. Callers that already
// committed a pack mutation log and drop these.
var ErrSyncFailed = errors.New("pack price sync failed")

// Synchronizer keeps Product.price equal to the cheapest active pack.
type Synchronizer struct {
	store PriceStore
}

func NewSynchronizer(store PriceStore) *Synchronizer {
	return &Synchronizer{store: store}
}

// Sync writes the minimum active pack price into the product and returns it.
// With no active packs the product price is left alone and updated is false.
// Concurrent syncs of the same product are last-writer-wins.
func (s *Synchronizer) Sync(ctx context.Context, productID string) (price float64, updated bool, err error) {
	prices, err := s.store.ActivePackPrices(ctx, productID)
	if err != nil {
		return 0, false, fmt.Errorf("%w: product %s: read packs: %w", ErrSyncFailed, productID, err)
	}
	if len(prices) == 0 {
		return 0, false, nil
	}
	price = prices[0]
	for _, p := range prices[1:] {
		if p < price {
			price = p
		}
	}
	if err := s.store.SetProductPrice(ctx, productID, price); err != nil {
		return 0, false, fmt.Errorf("%w: product %s: write price: %w", ErrSyncFailed, productID, err)
	}
	return price, true, nil
}
