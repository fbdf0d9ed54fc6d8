package order

import "errors"

var (
	// -- Orders --
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")

	// -- Pickups --
	ErrPickupNotFound      = errors.New("pickup not found")
	ErrInvalidPickupStatus = errors.New("invalid pickup status")
)
