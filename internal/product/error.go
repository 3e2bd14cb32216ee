package product

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// InsufficientStockError reports how many units of the offending variant can
// still be purchased. It is an expected, user-correctable outcome.
type InsufficientStockError struct {
	VariantID string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: %d available", e.VariantID, e.Available)
}

// VariantInactiveError means the variant was deactivated between browse and
// checkout. Surfaced to the user the same way as insufficient stock.
type VariantInactiveError struct {
	VariantID string
}

func (e *VariantInactiveError) Error() string {
	return fmt.Sprintf("variant %s is no longer available", e.VariantID)
}
