package auth

import "time"

// User is the signed-in account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Avatar      string    `json:"avatar,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Followers   int64     `json:"followers"`
	Following   int64     `json:"following"`
	IsCreator   bool      `json:"is_creator"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignupRequest defines account creation inputs.
type SignupRequest struct {
	Email       string
	Password    string
	Username    string
	DisplayName string
	IsCreator   bool
}

// Patch replaces the profile fields that are set.
type Patch struct {
	DisplayName *string
	Avatar      *string
	Bio         *string
	IsCreator   *bool
}
