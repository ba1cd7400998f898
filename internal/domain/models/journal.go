package models

import (
	"time"

	"github.com/google/uuid"
)

// JournalEntry is a free-text journal entry. Entry bodies run through the same
// risk pipeline as chat messages on create and update.
type JournalEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RiskLevel RiskLevel `json:"risk_level,omitempty"`
	Flagged   bool      `json:"flagged"`
}
