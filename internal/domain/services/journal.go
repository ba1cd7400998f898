package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// ErrJournalEntryNotFound is returned for unknown or foreign journal entries
var ErrJournalEntryNotFound = errors.New("journal entry not found")

// JournalService persists journal entries and runs every body through the same
// risk pipeline as chat messages. Journal entries have no conversation context
// and no reply generation: a critical tier still flags and alerts, but the
// crisis text is returned for the UI to display rather than substituted into a
// conversation.
type JournalService struct {
	journal    JournalRepository
	classifier *RiskClassifier
	escalation *EscalationEngine
	logger     *logger.Logger
}

// NewJournalService creates the journal pipeline service
func NewJournalService(journal JournalRepository, classifier *RiskClassifier, escalation *EscalationEngine, log *logger.Logger) *JournalService {
	return &JournalService{
		journal:    journal,
		classifier: classifier,
		escalation: escalation,
		logger:     log.WithComponent("journal-service"),
	}
}

// JournalResult carries the stored entry and any crisis response for the UI
type JournalResult struct {
	Entry          *models.JournalEntry   `json:"entry"`
	Assessment     *models.RiskAssessment `json:"assessment,omitempty"`
	CrisisResponse string                 `json:"crisis_response,omitempty"`
}

// Create stores a new journal entry after classifying its body
func (s *JournalService) Create(ctx context.Context, userID uuid.UUID, title, content, mood string) (*JournalResult, error) {
	now := time.Now()
	entry := &models.JournalEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		Mood:      mood,
		RiskLevel: models.RiskLevelLow,
		CreatedAt: now,
		UpdatedAt: now,
	}

	assessment := s.classifier.Classify(ctx, content, nil)
	entry.RiskLevel = assessment.RiskLevel
	entry.Flagged = assessment.Flagged()

	if err := s.journal.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return s.finish(ctx, entry, assessment)
}

// Update rewrites an entry's body and re-runs classification on the new text
func (s *JournalService) Update(ctx context.Context, userID, entryID uuid.UUID, title, content, mood string) (*JournalResult, error) {
	entry, err := s.journal.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.UserID != userID {
		return nil, ErrJournalEntryNotFound
	}

	assessment := s.classifier.Classify(ctx, content, nil)

	entry.Title = title
	entry.Content = content
	if mood != "" {
		entry.Mood = mood
	}
	entry.RiskLevel = assessment.RiskLevel
	entry.Flagged = entry.Flagged || assessment.Flagged()
	entry.UpdatedAt = time.Now()

	if err := s.journal.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update journal entry: %w", err)
	}

	return s.finish(ctx, entry, assessment)
}

// Get loads one entry, enforcing ownership
func (s *JournalService) Get(ctx context.Context, userID, entryID uuid.UUID) (*models.JournalEntry, error) {
	entry, err := s.journal.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.UserID != userID {
		return nil, ErrJournalEntryNotFound
	}
	return entry, nil
}

func (s *JournalService) finish(ctx context.Context, entry *models.JournalEntry, assessment *models.RiskAssessment) (*JournalResult, error) {
	outcome, escErr := s.escalation.Process(ctx, EscalationInput{
		UserID:          entry.UserID,
		SourceType:      models.SourceTypeJournal,
		SourceContentID: entry.ID,
		Content:         entry.Content,
	}, assessment)
	if escErr != nil && !errors.Is(escErr, ErrCriticalPersistence) {
		return nil, escErr
	}

	result := &JournalResult{Entry: entry, Assessment: assessment}
	if outcome != nil && outcome.BlockReply {
		result.CrisisResponse = outcome.CrisisMessage
	}
	return result, escErr
}
