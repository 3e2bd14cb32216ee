package product

// Product is a catalog entry. The catalog owns it; the checkout core only
// reads it.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    int64   `json:"price"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
	ImageURL *string `json:"image_url,omitempty"`

	Variants []*Variant `json:"variants"`
}

// Variant is a purchasable size/color combination with its own stock pool.
// Size and Color are empty when the product does not vary on that axis.
type Variant struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	SKU       string `json:"sku"`
	Stock     int    `json:"stock"`
	Active    bool   `json:"active"`

	// Denormalized from the parent product on joined reads.
	Price        int64  `json:"price"`
	ProductTitle string `json:"product_title,omitempty"`
}

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)
