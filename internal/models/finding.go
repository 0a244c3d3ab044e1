package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Finding is a standalone incident or observation record. It has no workflow
// beyond creation; the admin gallery lists findings newest first. PhotoKeys
// are object-storage keys, resolved to presigned URLs at the boundary.
type Finding struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	ReportedBy  string    `json:"reported_by"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Location    string    `json:"location"`
	PhotoKeys   []string  `json:"photo_keys,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
