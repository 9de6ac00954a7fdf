package common

import "errors"

var (

	// repository specific errors
	ErrNotFound         = errors.New("not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrStoreUnavailable = errors.New("user store unavailable")

	// credential verification outcomes
	ErrValidation        = errors.New("validation error")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrAccountLocked     = errors.New("account temporarily locked")

	// token / request authentication outcomes
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrInternal = errors.New("internal error")
)
