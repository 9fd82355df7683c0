package products

import "time"

// Product is a catalog row. Price tracks the cheapest active pack once the
// product has packs.
type Product struct {
	ID               string         `json:"id"`
	Slug             string         `json:"slug"`
	Name             string         `json:"name"`
	Description      *string        `json:"description"`
	ShortDescription *string        `json:"short_description"`
	Price            float64        `json:"price"`
	ComparePrice     *float64       `json:"compare_price"`
	SKU              *string        `json:"sku"`
	StockQuantity    int            `json:"stock_quantity"`
	CategoryID       *string        `json:"category_id"`
	Images           []string       `json:"images"`
	Attributes       map[string]any `json:"attributes"`
	IsActive         bool           `json:"is_active"`
	IsFeatured       bool           `json:"is_featured"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	// Listing expansion.
	Packs    []PackSummary `json:"packs"`
	MinPrice *float64      `json:"min_price"`
}

// PackSummary is the pack projection attached to expanded listings.
type PackSummary struct {
	ID       string  `json:"id"`
	PackSize int     `json:"pack_size"`
	Price    float64 `json:"price"`
	IsActive bool    `json:"is_active"`
}

// Input is the create/update payload.
type Input struct {
	Name          string  `json:"name" validate:"required"`
	Description   *string `json:"description"`
	Price         float64 `json:"price" validate:"gt=0"`
	StockQuantity int     `json:"stock_quantity" validate:"gte=0"`
	CategoryID    *string `json:"category_id" validate:"omitempty,uuid"`
}

// ListFilters holds the listing query parameters.
type ListFilters struct {
	Page        int    `json:"page" validate:"min=1"`
	PerPage     int    `json:"per_page" validate:"min=1,max=100"`
	CategoryID  string `json:"category_id"`
	Search      string
	Catalog     bool
	ExpandPacks bool
}

// ListResponse is the paged listing envelope.
type ListResponse struct {
	Data    []Product `json:"data"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}
