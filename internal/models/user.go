package models

import (
	"time"
)

// Role names carried in access tokens
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
)

// ValidRoles defines roles that can be granted
var ValidRoles = map[string]bool{
	RoleAdmin:   true,
	RoleManager: true,
}

// User represents a registered account
type User struct {
	ID                   int64     `json:"id" db:"id"`
	Username             string    `json:"username" db:"username"`
	Email                string    `json:"email" db:"email"`
	PasswordHash         string    `json:"-" db:"password_hash"`
	ReceiveNotifications bool      `json:"receive_notifications" db:"receive_notifications"`
	Roles                []string  `json:"roles" db:"-"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
}

// HasRole reports whether the user holds role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller of a service operation
type Identity struct {
	UserID int64
	Roles  []string
}

// HasRole reports whether the caller holds role
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsModerator reports whether the caller may see materials in every status
func (i *Identity) IsModerator() bool {
	return i.HasRole(RoleManager) || i.HasRole(RoleAdmin)
}

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the payload for obtaining an access token
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned on successful login
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// RoleRequest grants a role to a user
type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=Admin Manager"`
}

// NotificationSettingsRequest toggles email notifications
type NotificationSettingsRequest struct {
	ReceiveNotifications *bool `json:"receive_notifications" validate:"required"`
}
