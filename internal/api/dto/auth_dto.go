package dto

import "time"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest payload for direct login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ExternalLoginRequest payload for provider-asserted login.
type ExternalLoginRequest struct {
	Provider  string `json:"provider"`
	Assertion string `json:"assertion"`
}

// SessionResponse reports credential cookie lifetimes; the tokens
// themselves travel only as cookies.
type SessionResponse struct {
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
