package dto

import "time"

// LoginRequest payload for customer and employee login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
}
