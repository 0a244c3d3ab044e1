package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is an organization registered under a tenant. Clients scope users,
// formats and findings; a field worker only sees data for their own client.
type Client struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	NIT          string    `json:"nit"` // tax identification number
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
