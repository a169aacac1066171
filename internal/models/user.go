package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Summary returns the public subset of the user returned by auth endpoints
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Username: u.Username,
	}
}

// UserSummary is the user shape embedded in auth responses
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// SignupRequest represents an account creation request
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LogoutRequest carries the access token to revoke
type LogoutRequest struct {
	AccessToken string `json:"access_token"`
}

// SessionTokens holds the tokens issued on login
type SessionTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// SignupResponse represents a successful signup response
type SignupResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Message string        `json:"message"`
	User    UserSummary   `json:"user"`
	Session SessionTokens `json:"session"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	TokenID  string `json:"jti"`
	Exp      int64  `json:"exp"`
}

// RevokedToken marks an access token as logged out until it would have expired anyway.
type RevokedToken struct {
	TokenID   string    `bson:"_id" json:"jti"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	RevokedAt time.Time `bson:"revoked_at" json:"revoked_at"`
}
