package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type Signup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token        string  `json:"token"`
	ID           int64   `json:"_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ProfilePhoto *string `json:"profilePhoto"`
}

type ProfileUpdate struct {
	Name string `json:"name"`
}
