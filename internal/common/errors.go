package common

import "errors"

var (
	// ErrUnauthorized signals that the backend rejected the caller's
	// credentials or that no usable credentials are available.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound signals a missing record in the local credential store.
	ErrNotFound = errors.New("not found")
)
