package universe

import "errors"

var (
	// ErrUniverseNotFound indicates the universe doesn't exist.
	ErrUniverseNotFound = errors.New("universe not found")
	// ErrInvalidInput indicates invalid universe input.
	ErrInvalidInput = errors.New("invalid universe input")
)
