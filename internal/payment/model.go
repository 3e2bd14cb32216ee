package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Method is the closed set of payment methods an order can be placed with.
// The dispatch branch is chosen solely by the method and never revisited.
type Method string

const (
	// MethodGateway hands the buyer to the provider's hosted payment page;
	// settlement is confirmed asynchronously by a callback.
	MethodGateway Method = "gateway"
	// MethodBank is a deferred manual bank transfer.
	MethodBank Method = "bank"
	// MethodCOD collects cash on delivery.
	MethodCOD Method = "cod"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodGateway, MethodBank, MethodCOD:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown payment method: %q", s)
}

// Payment records one settlement attempt for an order.
type Payment struct {
	ID                uint
	OrderID           uuid.UUID
	Provider          string
	ProviderReference string
	RedirectURL       string
	Amount            int64
	Currency          string
	Status            string
	Method            Method
	ExpiresAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusFailed  = "FAILED"
)

const (
	ProviderGateway = "PAYGATE"
	ProviderBank    = "BANK"
	ProviderCOD     = "COD"
)

// Line is one itemized order line sent to the gateway.
type Line struct {
	VariantID string `json:"variant_id"`
	Title     string `json:"title"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// Customer is the contact the gateway shows on its hosted page.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Outcome is the result of dispatching a placed order to its payment branch.
// Exactly one of the three concrete types is produced per order.
type Outcome interface {
	Method() Method
	// DisplayStatus is the label the storefront shows right after placement.
	DisplayStatus() string
}

// GatewayRedirect hands control to the external hosted payment page. The
// order stays pending/unpaid until the asynchronous callback arrives.
type GatewayRedirect struct {
	RedirectURL       string `json:"redirect_url"`
	ProviderReference string `json:"provider_reference"`
}

func (GatewayRedirect) Method() Method        { return MethodGateway }
func (GatewayRedirect) DisplayStatus() string { return "redirecting to payment" }

// BankTransfer confirms the order immediately and shows settlement
// instructions; payment arrives out of band.
type BankTransfer struct {
	Reference string   `json:"reference"`
	Steps     []string `json:"steps"`
}

func (BankTransfer) Method() Method        { return MethodBank }
func (BankTransfer) DisplayStatus() string { return "awaiting bank transfer" }

// CashOnDelivery confirms the order immediately; the courier collects.
type CashOnDelivery struct {
	Steps []string `json:"steps"`
}

func (CashOnDelivery) Method() Method        { return MethodCOD }
func (CashOnDelivery) DisplayStatus() string { return "pay on delivery" }
