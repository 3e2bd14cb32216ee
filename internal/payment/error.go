package payment

import (
	"fmt"

	"github.com/google/uuid"
)

// GatewayDispatchError means the order was already persisted but the handoff
// to the payment gateway failed. Placement must not be retried blindly; the
// order is left pending for follow-up.
type GatewayDispatchError struct {
	OrderID     uuid.UUID
	OrderNumber string
	Err         error
}

func (e *GatewayDispatchError) Error() string {
	return fmt.Sprintf("payment gateway dispatch failed for order %s: %v", e.OrderNumber, e.Err)
}

func (e *GatewayDispatchError) Unwrap() error {
	return e.Err
}
