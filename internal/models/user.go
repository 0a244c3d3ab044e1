package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin      = "admin"
	RoleField      = "field"
	RoleSupervisor = "supervisor"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleField || role == RoleSupervisor
}

// User is an account within a tenant. Email is the natural key and never
// changes after creation.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	ClientID     uuid.UUID `json:"client_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the view of a User returned after credential validation.
// It never carries the password hash.
type Profile struct {
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	ClientID uuid.UUID `json:"client_id"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		ClientID: u.ClientID,
	}
}
