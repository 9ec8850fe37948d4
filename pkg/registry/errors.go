package registry

import "errors"

// Sentinel errors the API layer maps to HTTP status codes.
var (
	ErrNotFound      = errors.New("run not found")
	ErrAlreadyExists = errors.New("run already exists")
)
