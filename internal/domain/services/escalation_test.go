package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// In-memory repository fakes shared by the service tests.

type memFlaggedRepo struct {
	records     map[uuid.UUID]*models.FlaggedContent
	createCalls int
	failCreates int
}

func newMemFlaggedRepo() *memFlaggedRepo {
	return &memFlaggedRepo{records: map[uuid.UUID]*models.FlaggedContent{}}
}

func (m *memFlaggedRepo) Create(ctx context.Context, rec *models.FlaggedContent) error {
	m.createCalls++
	if m.failCreates > 0 {
		m.failCreates--
		return errors.New("storage unavailable")
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *memFlaggedRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FlaggedContent, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memFlaggedRepo) Update(ctx context.Context, rec *models.FlaggedContent) error {
	if _, ok := m.records[rec.ID]; !ok {
		return errors.New("not found")
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *memFlaggedRepo) List(ctx context.Context, filter models.FlaggedContentFilter) ([]*models.FlaggedContent, int64, error) {
	var out []*models.FlaggedContent
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

type memAlertRepo struct {
	alerts      map[uuid.UUID]*models.AdminAlert
	createCalls int
	failCreates int
	failUpdates int
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{alerts: map[uuid.UUID]*models.AdminAlert{}}
}

func (m *memAlertRepo) Create(ctx context.Context, alert *models.AdminAlert) error {
	m.createCalls++
	if m.failCreates > 0 {
		m.failCreates--
		return errors.New("storage unavailable")
	}
	cp := *alert
	m.alerts[alert.ID] = &cp
	return nil
}

func (m *memAlertRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAlert, error) {
	alert, ok := m.alerts[id]
	if !ok {
		return nil, nil
	}
	cp := *alert
	return &cp, nil
}

func (m *memAlertRepo) Update(ctx context.Context, alert *models.AdminAlert) error {
	if m.failUpdates > 0 {
		m.failUpdates--
		return errors.New("storage unavailable")
	}
	if _, ok := m.alerts[alert.ID]; !ok {
		return errors.New("not found")
	}
	cp := *alert
	m.alerts[alert.ID] = &cp
	return nil
}

func (m *memAlertRepo) List(ctx context.Context, filter models.AlertFilter) ([]*models.AdminAlert, error) {
	var out []*models.AdminAlert
	for _, alert := range m.alerts {
		if filter.Status != "" && alert.Status != filter.Status {
			continue
		}
		out = append(out, alert)
	}
	return out, nil
}

func (m *memAlertRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.AdminAlert, error) {
	var out []*models.AdminAlert
	for _, alert := range m.alerts {
		if alert.Timestamp.Before(since) {
			continue
		}
		out = append(out, alert)
	}
	return out, nil
}

type memLogRepo struct {
	entries []*models.InterventionLogEntry
}

func (m *memLogRepo) Append(ctx context.Context, entry *models.InterventionLogEntry) error {
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memLogRepo) ListByAlert(ctx context.Context, alertID uuid.UUID) ([]*models.InterventionLogEntry, error) {
	var out []*models.InterventionLogEntry
	for _, e := range m.entries {
		if e.AlertID == alertID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestEngine(flagged *memFlaggedRepo, alerts *memAlertRepo, logs *memLogRepo) *EscalationEngine {
	return NewEscalationEngine(flagged, alerts, logs, config.DefaultRiskConfig(), logger.NewDefault())
}

func assessmentFor(level models.RiskLevel, score int) *models.RiskAssessment {
	return &models.RiskAssessment{
		RiskLevel:         level,
		Score:             score,
		PatternScore:      score,
		RecommendedAction: RecommendedActionFor(level),
	}
}

func chatInput(content string) EscalationInput {
	return EscalationInput{
		UserID:          uuid.New(),
		SourceType:      models.SourceTypeChat,
		SourceContentID: uuid.New(),
		Content:         content,
	}
}

func TestProcessLowTier(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	e := newTestEngine(flagged, alerts, logs)

	outcome, err := e.Process(context.Background(), chatInput("hello"), assessmentFor(models.RiskLevelLow, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Flagged != nil || outcome.Alert != nil || outcome.BlockReply {
		t.Errorf("low tier must not persist or block: %+v", outcome)
	}
	if len(flagged.records) != 0 || len(alerts.alerts) != 0 || len(logs.entries) != 0 {
		t.Error("low tier wrote records")
	}
}

func TestProcessMediumTier(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	e := newTestEngine(flagged, alerts, logs)

	outcome, err := e.Process(context.Background(), chatInput("I feel sad"), assessmentFor(models.RiskLevelMedium, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Flagged == nil {
		t.Fatal("medium tier should create a flagged record")
	}
	if outcome.Flagged.Status != models.StatusPending {
		t.Errorf("expected pending status, got %s", outcome.Flagged.Status)
	}
	if outcome.Alert != nil {
		t.Error("medium tier must not create an alert")
	}
	if outcome.BlockReply {
		t.Error("medium tier must not block the reply")
	}
}

func TestProcessHighTier(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	e := newTestEngine(flagged, alerts, logs)

	outcome, err := e.Process(context.Background(), chatInput("I can't go on anymore"), assessmentFor(models.RiskLevelHigh, 12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Flagged == nil || outcome.Alert == nil {
		t.Fatal("high tier should create a flagged record and an alert")
	}
	if outcome.Alert.Status != models.StatusPending {
		t.Errorf("expected pending alert, got %s", outcome.Alert.Status)
	}
	if !outcome.Alert.FollowUpRequired {
		t.Error("high-tier alerts require follow-up")
	}
	if outcome.BlockReply {
		t.Error("high tier must stay invisible to the user")
	}
	if len(logs.entries) != 0 {
		t.Error("high tier should not auto-escalate")
	}
}

func TestProcessCriticalTier(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	e := newTestEngine(flagged, alerts, logs)

	outcome, err := e.Process(context.Background(), chatInput("I want to kill myself tonight"), assessmentFor(models.RiskLevelCritical, 17))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.BlockReply {
		t.Error("critical tier must block the normal reply")
	}
	if !strings.Contains(outcome.CrisisMessage, "988") {
		t.Error("crisis message should carry the 988 lifeline")
	}
	if outcome.Alert == nil {
		t.Fatal("critical tier should create an alert")
	}

	stored, _ := alerts.GetByID(context.Background(), outcome.Alert.ID)
	if stored.Status != models.StatusEscalated {
		t.Errorf("critical alert should be auto-escalated, got %s", stored.Status)
	}

	entries, _ := logs.ListByAlert(context.Background(), outcome.Alert.ID)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one intervention entry, got %d", len(entries))
	}
	if entries[0].Action != models.ActionCriticalEscalation {
		t.Errorf("expected CRITICAL_ESCALATION, got %s", entries[0].Action)
	}
	if entries[0].PerformedBy != models.SystemActor {
		t.Errorf("expected system actor, got %s", entries[0].PerformedBy)
	}
}

func TestProcessCriticalPersistenceFailure(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	flagged.failCreates = 2
	e := newTestEngine(flagged, alerts, logs)

	outcome, err := e.Process(context.Background(), chatInput("I want to kill myself tonight"), assessmentFor(models.RiskLevelCritical, 17))
	if !errors.Is(err, ErrCriticalPersistence) {
		t.Fatalf("expected ErrCriticalPersistence, got %v", err)
	}
	if outcome == nil || !outcome.BlockReply || !strings.Contains(outcome.CrisisMessage, "988") {
		t.Error("crisis message must survive a persistence failure")
	}
	if flagged.createCalls != 1 {
		t.Errorf("critical tier must not retry, got %d calls", flagged.createCalls)
	}
}

func TestProcessMediumRetriesOnce(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	flagged.failCreates = 1
	e := newTestEngine(flagged, alerts, logs)

	outcome, err := e.Process(context.Background(), chatInput("I feel sad"), assessmentFor(models.RiskLevelMedium, 6))
	if err != nil {
		t.Fatalf("retry should absorb a single failure: %v", err)
	}
	if outcome.Flagged == nil {
		t.Fatal("record should exist after retry")
	}
	if flagged.createCalls != 2 {
		t.Errorf("expected 2 create calls, got %d", flagged.createCalls)
	}
}

func TestProcessMediumFailsAfterRetry(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	flagged.failCreates = 2
	e := newTestEngine(flagged, alerts, logs)

	_, err := e.Process(context.Background(), chatInput("I feel sad"), assessmentFor(models.RiskLevelMedium, 6))
	if err == nil {
		t.Fatal("expected error after exhausted retry")
	}
	if errors.Is(err, ErrCriticalPersistence) {
		t.Error("non-critical failures must not be wrapped as critical")
	}
}

func TestProcessSnapshotTruncation(t *testing.T) {
	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	e := newTestEngine(flagged, alerts, logs)

	long := strings.Repeat("а", 600) // multibyte on purpose
	outcome, err := e.Process(context.Background(), chatInput(long), assessmentFor(models.RiskLevelMedium, 6))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot := []rune(outcome.Flagged.ContentSnapshot)
	if len(snapshot) != 500 {
		t.Errorf("expected 500-rune snapshot, got %d", len(snapshot))
	}
}
