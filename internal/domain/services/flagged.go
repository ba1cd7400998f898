package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// FlaggedService owns reviewer actions on flagged-content records. Records are
// never deleted; review, escalate and contact actions only mutate review
// fields.
type FlaggedService struct {
	flagged       FlaggedContentRepository
	conversations ConversationRepository
	journal       JournalRepository
	logger        *logger.Logger
}

// NewFlaggedService creates a flagged-content review service
func NewFlaggedService(flagged FlaggedContentRepository, conversations ConversationRepository, journal JournalRepository, log *logger.Logger) *FlaggedService {
	return &FlaggedService{
		flagged:       flagged,
		conversations: conversations,
		journal:       journal,
		logger:        log.WithComponent("flagged-service"),
	}
}

// List returns flagged records matching the filter plus the total count
func (s *FlaggedService) List(ctx context.Context, filter models.FlaggedContentFilter) ([]*models.FlaggedContent, int64, error) {
	return s.flagged.List(ctx, filter)
}

// FlaggedDetail pairs a flagged record with the content it was cut from
type FlaggedDetail struct {
	Flagged      *models.FlaggedContent `json:"flagged"`
	Conversation *models.Conversation   `json:"conversation,omitempty"`
	JournalEntry *models.JournalEntry   `json:"journal_entry,omitempty"`
}

// Get fetches a flagged record together with its owning conversation or
// journal entry. The related lookup is best-effort: a flagged record remains
// reviewable even if the source row is unavailable.
func (s *FlaggedService) Get(ctx context.Context, id uuid.UUID) (*FlaggedDetail, error) {
	rec, err := s.flagged.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrFlaggedNotFound
	}

	detail := &FlaggedDetail{Flagged: rec}
	switch rec.SourceType {
	case models.SourceTypeChat:
		conv, err := s.conversations.GetByID(ctx, rec.SourceContentID)
		if err != nil {
			s.logger.Warn().Err(err).Str("flagged_id", id.String()).Msg("failed to load related conversation")
		} else {
			detail.Conversation = conv
		}
	case models.SourceTypeJournal:
		entry, err := s.journal.GetByID(ctx, rec.SourceContentID)
		if err != nil {
			s.logger.Warn().Err(err).Str("flagged_id", id.String()).Msg("failed to load related journal entry")
		} else {
			detail.JournalEntry = entry
		}
	}
	return detail, nil
}

// Review records a reviewer decision on a flagged record. Moving the record to
// escalated requires at least one escalation target, which is appended to the
// record's reviewer list.
func (s *FlaggedService) Review(ctx context.Context, id uuid.UUID, reviewedBy uuid.UUID, status models.ReviewStatus, notes, actionTaken string, escalatedTo []uuid.UUID) (*models.FlaggedContent, error) {
	if status == "" {
		status = models.StatusReviewed
	}
	if !status.Valid() || status == models.StatusPending {
		return nil, fmt.Errorf("%w: cannot move flagged content to %q", ErrInvalidTransition, status)
	}
	if status == models.StatusEscalated && len(escalatedTo) == 0 {
		return nil, fmt.Errorf("%w: escalation requires at least one target", ErrInvalidTransition)
	}

	rec, err := s.flagged.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrFlaggedNotFound
	}

	now := time.Now()
	rec.Status = status
	rec.ReviewedBy = &reviewedBy
	rec.ReviewedAt = &now
	if notes != "" {
		rec.Notes = notes
	}
	if actionTaken != "" {
		rec.ActionTaken = actionTaken
	}
	rec.EscalatedTo = append(rec.EscalatedTo, escalatedTo...)

	if err := s.flagged.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update flagged content: %w", err)
	}

	s.logger.Info().
		Str("flagged_id", id.String()).
		Str("reviewed_by", reviewedBy.String()).
		Str("status", string(status)).
		Msg("flagged content reviewed")

	return rec, nil
}

// Contact records that the flagged user was reached out to
func (s *FlaggedService) Contact(ctx context.Context, id uuid.UUID, contactedBy uuid.UUID, method string) (*models.FlaggedContent, error) {
	rec, err := s.flagged.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrFlaggedNotFound
	}

	now := time.Now()
	rec.ContactedUser = true
	rec.ContactedAt = &now
	rec.ContactMethod = method
	rec.ReviewedBy = &contactedBy

	if err := s.flagged.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update flagged content: %w", err)
	}

	s.logger.Info().
		Str("flagged_id", id.String()).
		Str("contact_method", method).
		Msg("flagged user contacted")

	return rec, nil
}
