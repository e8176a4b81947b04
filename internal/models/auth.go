package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for either student or admin login.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SignupRequest registers a new student account.
type SignupRequest struct {
	StudentID string `json:"student_id" validate:"required,digits_min=10"`
	FirstName string `json:"first_name" validate:"required,alpha_name,max=100"`
	LastName  string `json:"last_name" validate:"required,alpha_name,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Phone     string `json:"phone" validate:"required,digits_min=10"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// LoginResponse returns the session token and principal.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	User        UserInfo  `json:"user"`
	IssuedAt    time.Time `json:"issued_at"`
}

// UserInfo describes the authenticated principal in responses.
type UserInfo struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	FullName      string   `json:"full_name"`
	Role          UserRole `json:"role"`
	StudentNumber string   `json:"student_id,omitempty"`
}

// JWTClaims is the session token payload. UserID is students.id or admins.id depending on Role.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
