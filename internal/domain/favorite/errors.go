package favorite

import "errors"

var (
	// ErrFavoriteNotFound indicates the universe is not a favorite.
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrInvalidInput indicates invalid favorite input.
	ErrInvalidInput = errors.New("invalid favorite input")
)
