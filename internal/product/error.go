package product

import "errors"

var (
	// -- Validation & Input --
	ErrNameRequired = errors.New("product name is required")
	ErrNoVariants   = errors.New("product needs at least one variant")
	ErrSKURequired  = errors.New("variant sku is required")
	ErrInvalidPrice = errors.New("variant price must not be negative")

	// -- Resource State --
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("variant sku already exists")
)
