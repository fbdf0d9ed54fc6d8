package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrVariantNotFound  = errors.New("variant not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrItemUnavailable  = errors.New("cart item is no longer available")
)
