package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceEntry is one check-in span for a user. An entry with a nil
// CheckOut is open; a user has at most one open entry at a time.
type AttendanceEntry struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	ClientID uuid.UUID  `json:"client_id"`
	Date     string     `json:"date"` // YYYY-MM-DD, local to the tenant
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Location string     `json:"location,omitempty"`
}

// Open reports whether the entry has no check-out yet.
func (e *AttendanceEntry) Open() bool { return e.CheckOut == nil }
