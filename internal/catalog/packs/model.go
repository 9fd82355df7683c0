package packs

import "time"

// Pack is a bulk-quantity variant of a product with its own price.
type Pack struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	PackSize  int       `json:"pack_size"`
	Price     float64   `json:"price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the create/update payload.
type Input struct {
	PackSize int      `json:"pack_size" validate:"gte=1"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	IsActive *bool    `json:"is_active"`
}

func (in Input) active() bool {
	return in.IsActive == nil || *in.IsActive
}
