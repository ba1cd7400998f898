package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

type memJournalRepo struct {
	entries map[uuid.UUID]*models.JournalEntry
}

func newMemJournalRepo() *memJournalRepo {
	return &memJournalRepo{entries: map[uuid.UUID]*models.JournalEntry{}}
}

func (m *memJournalRepo) Create(ctx context.Context, entry *models.JournalEntry) error {
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *memJournalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (m *memJournalRepo) Update(ctx context.Context, entry *models.JournalEntry) error {
	if _, ok := m.entries[entry.ID]; !ok {
		return errors.New("not found")
	}
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func seedFlagged(repo *memFlaggedRepo, sourceType models.SourceType, sourceID uuid.UUID) *models.FlaggedContent {
	rec := &models.FlaggedContent{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		SourceType:      sourceType,
		SourceContentID: sourceID,
		ContentSnapshot: "snapshot",
		RiskLevel:       models.RiskLevelMedium,
		Reason:          models.ActionMonitorAndReview,
		Status:          models.StatusPending,
		CreatedAt:       time.Now(),
	}
	repo.records[rec.ID] = rec
	return rec
}

func newTestFlaggedService(flagged *memFlaggedRepo, conversations *memConversationRepo, journal *memJournalRepo) *FlaggedService {
	return NewFlaggedService(flagged, conversations, journal, logger.NewDefault())
}

func TestFlaggedGetWithRelatedJournal(t *testing.T) {
	flagged, conversations, journal := newMemFlaggedRepo(), newMemConversationRepo(), newMemJournalRepo()
	s := newTestFlaggedService(flagged, conversations, journal)

	entry := &models.JournalEntry{ID: uuid.New(), UserID: uuid.New(), Title: "today", Content: "body"}
	journal.entries[entry.ID] = entry
	rec := seedFlagged(flagged, models.SourceTypeJournal, entry.ID)

	detail, err := s.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.JournalEntry == nil || detail.JournalEntry.ID != entry.ID {
		t.Error("related journal entry not attached")
	}
	if detail.Conversation != nil {
		t.Error("journal-sourced record must not attach a conversation")
	}

	if _, err := s.Get(context.Background(), uuid.New()); !errors.Is(err, ErrFlaggedNotFound) {
		t.Errorf("expected ErrFlaggedNotFound, got %v", err)
	}
}

func TestFlaggedReview(t *testing.T) {
	flagged, conversations, journal := newMemFlaggedRepo(), newMemConversationRepo(), newMemJournalRepo()
	s := newTestFlaggedService(flagged, conversations, journal)
	rec := seedFlagged(flagged, models.SourceTypeChat, uuid.New())
	reviewer := uuid.New()

	got, err := s.Review(context.Background(), rec.ID, reviewer, "", "checked in with care team", "referred to therapist", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.StatusReviewed {
		t.Errorf("empty status should default to reviewed, got %s", got.Status)
	}
	if got.ReviewedBy == nil || *got.ReviewedBy != reviewer {
		t.Error("reviewer not recorded")
	}
	if got.ReviewedAt == nil {
		t.Error("review time not recorded")
	}
	if got.ActionTaken != "referred to therapist" {
		t.Errorf("action taken not recorded: %q", got.ActionTaken)
	}
}

func TestFlaggedReviewRejectsPendingTarget(t *testing.T) {
	flagged, conversations, journal := newMemFlaggedRepo(), newMemConversationRepo(), newMemJournalRepo()
	s := newTestFlaggedService(flagged, conversations, journal)
	rec := seedFlagged(flagged, models.SourceTypeChat, uuid.New())

	_, err := s.Review(context.Background(), rec.ID, uuid.New(), models.StatusPending, "", "", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestFlaggedReviewEscalateRecordsTargets(t *testing.T) {
	flagged, conversations, journal := newMemFlaggedRepo(), newMemConversationRepo(), newMemJournalRepo()
	s := newTestFlaggedService(flagged, conversations, journal)
	rec := seedFlagged(flagged, models.SourceTypeChat, uuid.New())
	targets := []uuid.UUID{uuid.New(), uuid.New()}

	got, err := s.Review(context.Background(), rec.ID, uuid.New(), models.StatusEscalated, "needs a clinician", "", targets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != models.StatusEscalated {
		t.Errorf("expected escalated status, got %s", got.Status)
	}
	if len(got.EscalatedTo) != 2 || got.EscalatedTo[0] != targets[0] || got.EscalatedTo[1] != targets[1] {
		t.Errorf("escalation targets not recorded: %v", got.EscalatedTo)
	}
}

func TestFlaggedReviewEscalateRequiresTargets(t *testing.T) {
	flagged, conversations, journal := newMemFlaggedRepo(), newMemConversationRepo(), newMemJournalRepo()
	s := newTestFlaggedService(flagged, conversations, journal)
	rec := seedFlagged(flagged, models.SourceTypeChat, uuid.New())

	_, err := s.Review(context.Background(), rec.ID, uuid.New(), models.StatusEscalated, "", "", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestFlaggedContact(t *testing.T) {
	flagged, conversations, journal := newMemFlaggedRepo(), newMemConversationRepo(), newMemJournalRepo()
	s := newTestFlaggedService(flagged, conversations, journal)
	rec := seedFlagged(flagged, models.SourceTypeChat, uuid.New())

	got, err := s.Contact(context.Background(), rec.ID, uuid.New(), "phone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.ContactedUser || got.ContactedAt == nil || got.ContactMethod != "phone" {
		t.Errorf("contact fields not recorded: %+v", got)
	}
}
