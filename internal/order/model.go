package order

import (
	"time"

	"kickstep-be/internal/payment"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Order is created exactly once by the placement transaction and mutated
// afterwards only through status transitions.
type Order struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uint            `json:"user_id"`
	Number           string          `json:"number"`
	Subtotal         int64           `json:"subtotal"`
	ShippingCost     int64           `json:"shipping_cost"`
	Total            int64           `json:"total"`
	Currency         string          `json:"currency"`
	Status           Status          `json:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	PaymentMethod    payment.Method  `json:"payment_method"`
	PaymentProvider  string          `json:"payment_provider,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	ShippingMethod   string          `json:"shipping_method"`
	ShippingAddress  Address         `json:"shipping_address"`
	BillingAddress   Address         `json:"billing_address"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Lines []*OrderLine `json:"lines,omitempty"`
}

// OrderLine is an immutable snapshot of what was sold: later catalog edits
// must never change what an existing order shows.
type OrderLine struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	VariantID string    `json:"variant_id"`
	Title     string    `json:"title"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	SKU       string    `json:"sku"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal int64     `json:"line_total"`
}

type Address struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// PlacementLine is one cart line as captured at submission time.
type PlacementLine struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type PlaceOrderInput struct {
	Lines           []PlacementLine
	ShippingMethod  string
	ShippingCost    int64
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   payment.Method
	Currency        string
}

// PlacementResult is the checkout submission contract: the persisted order
// plus the payment branch outcome the storefront acts on.
type PlacementResult struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Total         int64           `json:"total"`
	Next          payment.Outcome `json:"next"`
}

type OrderFilterInput struct {
	Search   *string
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
}

type OrderSortField string

const (
	OrderSortFieldCreatedAt OrderSortField = "CREATED_AT"
	OrderSortFieldTotal     OrderSortField = "TOTAL"
)

type SortDirection string

const (
	SortDirectionAsc  SortDirection = "ASC"
	SortDirectionDesc SortDirection = "DESC"
)

type OrderSortInput struct {
	Field     OrderSortField
	Direction SortDirection
}
