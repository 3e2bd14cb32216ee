package cart

import "time"

// CartLine is the quantity a user intends to purchase for one variant, plus
// denormalized display fields so the cart page renders without catalog joins.
// It is advisory state: final stock correctness belongs to order placement.
type CartLine struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	VariantID string    `json:"variant_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Title     string    `json:"title"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	SKU       string    `json:"sku"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateLineParams struct {
	UserID    uint
	VariantID string
	ProductID string
	Quantity  int
	UnitPrice int64
	Title     string
	Size      string
	Color     string
	SKU       string
}
