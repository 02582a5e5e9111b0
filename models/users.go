package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a portal user account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UsersResponse holds a list of users.
type UsersResponse struct {
	Users []User `json:"users"`
}

// UserResponse represents a response with a single user.
type UserResponse struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed session token and its expiry.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry string `json:"expiry"`
	User   User   `json:"user"`
}

type UpdateProfileRequest struct {
	Email string `json:"email"`
}
