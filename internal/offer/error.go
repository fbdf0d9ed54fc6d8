package offer

import "errors"

var (
	// -- Validation & Input --
	ErrTitleRequired    = errors.New("offer title is required")
	ErrInvalidWindow    = errors.New("offer starts_at must be before ends_at")
	ErrInvalidDiscount  = errors.New("offer needs exactly one positive discount")
	ErrInvalidCartValue = errors.New("offer min cart value and cap must not be negative")

	// -- Resource State --
	ErrOfferNotFound = errors.New("offer not found")
)
