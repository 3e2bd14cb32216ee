package order

// Fulfillment and payment lifecycles are independent: an order can be
// SHIPPED while still UNPAID (cash on delivery), or PENDING while already
// PAID (gateway capture before manual confirmation).
//
// Moves between the fulfillment states are deliberately permissive — the
// admin UI allows direct jumps (PENDING straight to SHIPPED) and this core
// preserves that. Only the terminal states constrain what happens next.

var fulfillmentStates = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
}

// CanTransition reports whether an admin (or payment callback) may move an
// order from one status to another.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}

	switch to {
	case StatusCancelled:
		// Reachable from any pre-delivered state.
		return fulfillmentStates[from] && from != StatusDelivered
	case StatusRefunded:
		return from == StatusDelivered || from == StatusCancelled
	case StatusPending:
		// Nothing returns to pending.
		return false
	case StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered:
		return fulfillmentStates[from]
	}

	return false
}

// CanPaymentTransition reports whether payment_status may change.
func CanPaymentTransition(from, to PaymentStatus) bool {
	switch from {
	case PaymentUnpaid:
		return to == PaymentPaid || to == PaymentFailed
	case PaymentPaid:
		return to == PaymentRefunded
	}
	return false
}
