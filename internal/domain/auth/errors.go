package auth

import "errors"

var (
	// ErrInvalidCredentials indicates a malformed email or empty password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated indicates no user is signed in.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidInput indicates invalid profile input.
	ErrInvalidInput = errors.New("invalid auth input")
)
