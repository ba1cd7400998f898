package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminAlert is the reviewer-facing record created for high/critical tiers.
// It mirrors the flagged-content record but carries the full assessment and
// its own review lifecycle with an append-only intervention log.
type AdminAlert struct {
	ID               uuid.UUID      `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	UserID           uuid.UUID      `json:"user_id"`
	ConversationID   uuid.UUID      `json:"conversation_id"`
	MessageContent   string         `json:"message_content"`
	RiskAnalysis     RiskAssessment `json:"risk_analysis"`
	Status           ReviewStatus   `json:"status"`
	AssignedTo       *uuid.UUID     `json:"assigned_to,omitempty"`
	Notes            string         `json:"notes,omitempty"`
	EscalatedTo      []uuid.UUID    `json:"escalated_to,omitempty"`
	FollowUpRequired bool           `json:"follow_up_required"`
}

// InterventionAction tags an intervention log entry
type InterventionAction string

const (
	ActionCriticalEscalation InterventionAction = "CRITICAL_ESCALATION"
	ActionAdminReview        InterventionAction = "ADMIN_REVIEW"
	ActionEscalation         InterventionAction = "ESCALATION"
	ActionUserContact        InterventionAction = "USER_CONTACT"
)

// SystemActor is the performer recorded for automatic transitions
const SystemActor = "system"

// InterventionLogEntry is one append-only audit entry for an alert.
// Entries are never edited or deleted; one is written per state transition.
type InterventionLogEntry struct {
	ID          uuid.UUID          `json:"id"`
	AlertID     uuid.UUID          `json:"alert_id"`
	Timestamp   time.Time          `json:"timestamp"`
	Action      InterventionAction `json:"action"`
	PerformedBy string             `json:"performed_by"`
	Outcome     string             `json:"outcome,omitempty"`
	NextSteps   string             `json:"next_steps,omitempty"`
}

// AlertFilter defines filtering options for listing alerts
type AlertFilter struct {
	Status    ReviewStatus
	RiskLevel RiskLevel
	Limit     int
	Offset    int
}

// RiskReport aggregates alert activity over a time window
type RiskReport struct {
	WindowHours    int            `json:"window_hours"`
	GeneratedAt    time.Time      `json:"generated_at"`
	TotalAlerts    int            `json:"total_alerts"`
	ByRiskLevel    map[string]int `json:"by_risk_level"`
	ByStatus       map[string]int `json:"by_status"`
	// MeanTimeToReviewMinutes is the mean delay between alert creation and the
	// first ADMIN_REVIEW log entry, over resolved alerts in the window. Zero
	// when no resolved alerts exist.
	MeanTimeToReviewMinutes float64        `json:"mean_time_to_review_minutes"`
	HourlyTrend             map[string]int `json:"hourly_trend,omitempty"`
}
