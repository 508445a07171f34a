package remix

import "errors"

var (
	// ErrRemixNotFound indicates the remix doesn't exist.
	ErrRemixNotFound = errors.New("remix not found")
	// ErrInvalidInput indicates invalid remix input.
	ErrInvalidInput = errors.New("invalid remix input")
)
