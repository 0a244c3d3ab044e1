package models

import (
	"time"

	"github.com/google/uuid"
)

// FormatField describes one field of a form template.
type FormatField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"` // text, number, date, select, checkbox, photo
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"` // for select fields
}

// Format is a reusable safety-document template owned by a client.
type Format struct {
	ID        uuid.UUID     `json:"id"`
	ClientID  uuid.UUID     `json:"client_id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Fields    []FormatField `json:"fields"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}
