package models

import (
	"strings"
	"time"
)

// Role is a user category controlling navigation, form sections and permissions
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
)

// ValidRoles defines the available roles in the system
var ValidRoles = []Role{
	RoleEmployee,
	RoleAdmin,
	RoleHR,
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	for _, validRole := range ValidRoles {
		if role == validRole {
			return true
		}
	}
	return false
}

// Label is the upper-cased role shown in the layout header
func (r Role) Label() string {
	return strings.ToUpper(string(r))
}

// IsStaff reports whether the role may run admin workflows
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleHR
}

// Identity is the authenticated user behind a session
type Identity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session markers a client keeps after login
type LoginResponse struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutResponse tells the client where to go after logout
type LogoutResponse struct {
	Redirect string `json:"redirect"`
}

// UserRecord is one entry of the users file
type UserRecord struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	Role         Role   `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
}

// Identity returns the session identity of the record
func (u UserRecord) Identity() Identity {
	return Identity{Email: strings.ToLower(u.Email), Name: u.Name, Role: u.Role}
}
