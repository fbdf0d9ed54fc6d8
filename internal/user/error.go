package user

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidEmail     = errors.New("email is invalid")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// -- Auth --
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
