package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password  string    `json:"-"`                        // Store hashed password, ignore for JSON serialization
	IsAdmin   bool      `json:"is_admin"`
	Locale    string    `json:"locale"`
	Theme     string    `json:"theme"`
	UserKey   string    `json:"user_key" gorm:"uniqueIndex"` // Stable key namespacing public forwarding URLs
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Locale string `json:"locale,omitempty" validate:"omitempty,max=10"`
	Theme  string `json:"theme,omitempty" validate:"omitempty,max=30"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID  uint   `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}
