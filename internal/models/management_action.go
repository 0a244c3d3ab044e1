package models

import (
	"time"

	"github.com/google/uuid"
)

// ManagementAction is a follow-up attached to a pending FormRecord. The
// record cannot close until its actions are resolved, unless the action is
// recorded as already completed.
type ManagementAction struct {
	ID          uuid.UUID `json:"id"`
	RecordID    uuid.UUID `json:"record_id"`
	Description string    `json:"description"`
	Responsible string    `json:"responsible"`
	DueDate     time.Time `json:"due_date"`
	Completed   bool      `json:"completed"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
