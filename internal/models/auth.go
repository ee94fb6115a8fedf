package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest creates a new school together with its first admin account.
type RegisterRequest struct {
	SchoolName string `json:"school_name" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest updates the caller's own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// AuthResponse returns the issued token and profile of the authenticated user.
type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	User      UserInfo `json:"user"`
}

// UserInfo describes a user in responses, never including the password hash.
type UserInfo struct {
	ID                 string   `json:"id"`
	SchoolID           string   `json:"school_id"`
	Email              string   `json:"email"`
	FullName           string   `json:"full_name"`
	Role               UserRole `json:"role"`
	MustChangePassword bool     `json:"must_change_password"`
}

// InfoFromUser projects a stored user into its response shape.
func InfoFromUser(u *User) UserInfo {
	return UserInfo{
		ID:                 u.ID,
		SchoolID:           u.SchoolID,
		Email:              u.Email,
		FullName:           u.FullName,
		Role:               u.Role,
		MustChangePassword: u.MustChangePassword,
	}
}

// Claims is the JWT payload for access tokens. Role and school id are
// advisory: the authenticator re-fetches the user record on every request and
// the stored values win.
type Claims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	SchoolID string   `json:"school_id"`
	jwt.RegisteredClaims
}

// AuthContext is attached to the request context after authentication. It is
// the only source of identity and tenant scope for downstream handlers.
type AuthContext struct {
	User     *User
	SchoolID string
}
