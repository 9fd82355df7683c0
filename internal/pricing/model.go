package pricing

// SegmentPrice is the price of a product for one customer segment.
type SegmentPrice struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	UserTypeID string  `json:"user_type_id"`
	Price      float64 `json:"price"`
}

// Override is the price of a product for one organization.
type Override struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"product_id"`
	OrganizationID string  `json:"organization_id"`
	Price          float64 `json:"price"`
}

type UserType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Organization struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	UserTypeID *string `json:"user_type_id"`
}

type SegmentInput struct {
	ProductID  string   `json:"product_id" validate:"required,uuid"`
	UserTypeID string   `json:"user_type_id" validate:"required,uuid"`
	Price      *float64 `json:"price" validate:"required,gte=0"`
}

type OverrideInput struct {
	ProductID      string   `json:"product_id" validate:"required,uuid"`
	OrganizationID string   `json:"organization_id" validate:"required,uuid"`
	Price          *float64 `json:"price" validate:"required,gte=0"`
}

// SegmentFilter and OverrideFilter narrow admin listings; empty fields match all.
type SegmentFilter struct {
	ProductID  string
	UserTypeID string
}

type OverrideFilter struct {
	ProductID      string
	OrganizationID string
}
