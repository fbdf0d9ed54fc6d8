package checkout

import "errors"

var (
	// -- Cart --
	ErrEmptyCart = errors.New("cart is empty")

	// -- Fulfillment --
	ErrInvalidFulfillmentType = errors.New("fulfillment type must be delivery or pickup")
	ErrAddressRequired        = errors.New("address is required for delivery")
	ErrStoreRequired          = errors.New("store is required for pickup")
	ErrStoreCannotFulfillCart = errors.New("store cannot fulfill cart")
	ErrNoStoreAvailable       = errors.New("no store can fulfill cart right now")

	// -- Concurrency --
	ErrCheckoutConflict = errors.New("checkout conflicted with another request, retry")
)
