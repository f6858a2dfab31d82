package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	Email      string   `json:"email"`
	ProviderID string   `json:"provider_id,omitempty"`
	Gender     string   `json:"gender,omitempty"`
	jwt.RegisteredClaims
}
