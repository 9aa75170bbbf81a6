package api

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrNetwork is returned when there's a network communication error
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned when the server rejects the access token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when the requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when the cart already holds a line for the
	// requested product
	ErrConflict = errors.New("cart line already exists")

	// ErrServer is returned for any other non-success response
	ErrServer = errors.New("server error")
)
