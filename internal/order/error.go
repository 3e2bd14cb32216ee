package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUnauthenticated   = errors.New("checkout requires an authenticated user")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmptyOrder        = errors.New("order has no lines")
	ErrInvalidLine       = errors.New("order line has invalid quantity or price")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTransactionFault marks a storage-layer failure during placement.
	// The transaction guarantees no partial commit, so a retry is safe.
	ErrTransactionFault = errors.New("order placement failed, no changes were committed")
)
