package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

func newTestJournalService(journal *memJournalRepo) (*JournalService, *memFlaggedRepo, *memAlertRepo) {
	cfg := config.DefaultRiskConfig()
	log := logger.NewDefault()
	external := NewExternalClassifier(config.ClassifierConfig{Enabled: false}, log)
	classifier := NewRiskClassifier(cfg, external, log)

	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	escalation := NewEscalationEngine(flagged, alerts, logs, cfg, log)

	return NewJournalService(journal, classifier, escalation, log), flagged, alerts
}

func TestJournalCreateNeutral(t *testing.T) {
	journal := newMemJournalRepo()
	svc, flagged, _ := newTestJournalService(journal)

	result, err := svc.Create(context.Background(), uuid.New(), "morning", "Went for a run, felt great", "happy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Entry.Flagged {
		t.Error("neutral entry should not be flagged")
	}
	if result.CrisisResponse != "" {
		t.Error("neutral entry should not carry a crisis response")
	}
	if len(flagged.records) != 0 {
		t.Error("no flagged record expected")
	}
}

func TestJournalCreateCritical(t *testing.T) {
	journal := newMemJournalRepo()
	svc, flagged, alerts := newTestJournalService(journal)

	result, err := svc.Create(context.Background(), uuid.New(), "night", "I want to kill myself tonight", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Entry.Flagged || result.Entry.RiskLevel != models.RiskLevelCritical {
		t.Errorf("entry risk state wrong: %+v", result.Entry)
	}
	if !strings.Contains(result.CrisisResponse, "988") {
		t.Error("critical entry should return the crisis resources")
	}
	if len(flagged.records) != 1 || len(alerts.alerts) != 1 {
		t.Errorf("expected flagged record and alert, got %d/%d", len(flagged.records), len(alerts.alerts))
	}
	for _, rec := range flagged.records {
		if rec.SourceType != models.SourceTypeJournal {
			t.Errorf("expected journal source type, got %s", rec.SourceType)
		}
	}
}

func TestJournalUpdateReclassifies(t *testing.T) {
	journal := newMemJournalRepo()
	svc, _, _ := newTestJournalService(journal)
	userID := uuid.New()

	created, err := svc.Create(context.Background(), userID, "day", "All fine here", "")
	if err != nil {
		t.Fatal(err)
	}
	if created.Entry.Flagged {
		t.Fatal("initial entry should be clean")
	}

	updated, err := svc.Update(context.Background(), userID, created.Entry.ID, "day", "I feel really sad and overwhelmed lately", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Entry.Flagged || updated.Entry.RiskLevel != models.RiskLevelMedium {
		t.Errorf("update should reclassify the new body: %+v", updated.Entry)
	}
}

func TestJournalOwnership(t *testing.T) {
	journal := newMemJournalRepo()
	svc, _, _ := newTestJournalService(journal)

	created, err := svc.Create(context.Background(), uuid.New(), "mine", "private thoughts", "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(context.Background(), uuid.New(), created.Entry.ID); !errors.Is(err, ErrJournalEntryNotFound) {
		t.Fatalf("foreign entries must look like missing ones, got %v", err)
	}
	if _, err := svc.Update(context.Background(), uuid.New(), created.Entry.ID, "t", "new body", ""); !errors.Is(err, ErrJournalEntryNotFound) {
		t.Fatalf("foreign updates must be rejected, got %v", err)
	}
}
