package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrLineNotFound = errors.New("cart line not found")
	ErrCartEmpty    = errors.New("cart is empty")

	// ErrDuplicateLine means a concurrent request inserted the same
	// (user, variant) line first.
	ErrDuplicateLine = errors.New("cart line already exists for variant")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
