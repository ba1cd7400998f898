package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/domain/models"
)

// Repository interfaces required of the persistence collaborator. The engine
// never assumes a storage technology; the postgres implementations live under
// internal/infrastructure/database/repository and tests substitute in-memory
// fakes.

// FlaggedContentRepository persists flagged-content records
type FlaggedContentRepository interface {
	Create(ctx context.Context, rec *models.FlaggedContent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FlaggedContent, error)
	Update(ctx context.Context, rec *models.FlaggedContent) error
	List(ctx context.Context, filter models.FlaggedContentFilter) ([]*models.FlaggedContent, int64, error)
}

// AlertRepository persists admin alerts
type AlertRepository interface {
	Create(ctx context.Context, alert *models.AdminAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAlert, error)
	Update(ctx context.Context, alert *models.AdminAlert) error
	List(ctx context.Context, filter models.AlertFilter) ([]*models.AdminAlert, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]*models.AdminAlert, error)
}

// InterventionLogRepository persists the append-only intervention audit trail
type InterventionLogRepository interface {
	Append(ctx context.Context, entry *models.InterventionLogEntry) error
	ListByAlert(ctx context.Context, alertID uuid.UUID) ([]*models.InterventionLogEntry, error)
}

// ConversationRepository persists conversations and their message history
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	Update(ctx context.Context, conv *models.Conversation) error
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	// History returns the conversation's messages ordered oldest-first
	History(ctx context.Context, conversationID uuid.UUID) ([]models.ChatMessage, error)
}

// JournalRepository persists journal entries
type JournalRepository interface {
	Create(ctx context.Context, entry *models.JournalEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	Update(ctx context.Context, entry *models.JournalEntry) error
}
