package models

import (
	"time"

	"github.com/google/uuid"
)

// FormRecord workflow states. A record is open on submission, pending_action
// once a management action is attached, and closed terminally.
const (
	RecordOpen          = "open"
	RecordPendingAction = "pending_action"
	RecordClosed        = "closed"
)

// Closure is the terminal metadata of a closed FormRecord. Once set it never
// changes; repeated close calls return the same closure.
type Closure struct {
	ClosedBy string    `json:"closed_by"`
	ClosedAt time.Time `json:"closed_at"`
	Outcome  string    `json:"outcome"`
	Notes    string    `json:"notes,omitempty"`
}

// FormRecord is a filled instance of a Format. FormatName is denormalized at
// submission so the record stays listable and closable after its template is
// deleted.
type FormRecord struct {
	ID          uuid.UUID      `json:"id"`
	FormatID    uuid.UUID      `json:"format_id"`
	FormatName  string         `json:"format_name"`
	ClientID    uuid.UUID      `json:"client_id"`
	SubmittedBy string         `json:"submitted_by"`
	Values      map[string]any `json:"values"`
	Status      string         `json:"status"`
	Closure     *Closure       `json:"closure,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
