package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceType identifies where flagged content originated
type SourceType string

const (
	SourceTypeChat    SourceType = "chat"
	SourceTypeJournal SourceType = "journal"
)

// ReviewStatus is the lifecycle state of a flagged record or admin alert
type ReviewStatus string

const (
	StatusPending   ReviewStatus = "pending"
	StatusReviewed  ReviewStatus = "reviewed"
	StatusEscalated ReviewStatus = "escalated"
	StatusResolved  ReviewStatus = "resolved"
)

// Valid reports whether the value is a known review status
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusEscalated, StatusResolved:
		return true
	}
	return false
}

// FlaggedContent is the persisted record of a message or journal entry that
// triggered a non-low risk tier. Records are never deleted (audit requirement);
// reviewer actions only mutate the review fields.
type FlaggedContent struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	SourceType      SourceType        `json:"source_type"`
	SourceContentID uuid.UUID         `json:"source_content_id"`
	ContentSnapshot string            `json:"content_snapshot"`
	RiskLevel       RiskLevel         `json:"risk_level"`
	Indicators      []RiskIndicator   `json:"indicators,omitempty"`
	Reason          RecommendedAction `json:"reason"`
	Status          ReviewStatus      `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`

	// Review fields
	ReviewedBy  *uuid.UUID  `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time  `json:"reviewed_at,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	ActionTaken string      `json:"action_taken,omitempty"`
	EscalatedTo []uuid.UUID `json:"escalated_to,omitempty"`

	// User-contact tracking
	ContactedUser bool       `json:"contacted_user"`
	ContactedAt   *time.Time `json:"contacted_at,omitempty"`
	ContactMethod string     `json:"contact_method,omitempty"`
}

// FlaggedContentFilter defines filtering options for listing flagged content
type FlaggedContentFilter struct {
	Status    ReviewStatus
	RiskLevel RiskLevel
	UserID    *uuid.UUID
	Limit     int
	Offset    int
}
