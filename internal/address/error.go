package address

import "errors"

var (
	// -- Validation & Input --
	ErrIncompleteAddress = errors.New("name, line1, city and postal code are required")

	// -- Resource State --
	// ErrAddressNotFound covers missing addresses and addresses owned by
	// another user.
	ErrAddressNotFound = errors.New("address not found")
)
