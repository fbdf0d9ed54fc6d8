package store

import "errors"

var (
	// -- Validation & Input --
	ErrNameRequired    = errors.New("store name is required")
	ErrInvalidLocation = errors.New("latitude or longitude out of range")
	ErrInvalidHours    = errors.New("invalid working hours")

	// -- Resource State --
	ErrStoreNotFound = errors.New("store not found")
)
