package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// EscalationInput describes the message or journal body being processed
type EscalationInput struct {
	UserID          uuid.UUID
	SourceType      models.SourceType
	SourceContentID uuid.UUID
	Content         string
}

// EscalationOutcome is the engine's decision for one input. BlockReply set
// means the caller must not generate a normal reply and should deliver
// CrisisMessage instead. The user's own message is still recorded in history
// before the substitution.
type EscalationOutcome struct {
	Flagged       *models.FlaggedContent
	Alert         *models.AdminAlert
	BlockReply    bool
	CrisisMessage string
}

// EscalationEngine turns a risk assessment into persisted flagged-content
// records and admin alerts, and decides whether normal reply generation is
// short-circuited. Record creation for a single input is sequential and
// completes (or fails loudly) before the caller proceeds.
type EscalationEngine struct {
	flagged       FlaggedContentRepository
	alerts        AlertRepository
	interventions InterventionLogRepository
	snapshotMax   int
	logger        *logger.Logger
}

// NewEscalationEngine creates an escalation engine
func NewEscalationEngine(
	flagged FlaggedContentRepository,
	alerts AlertRepository,
	interventions InterventionLogRepository,
	cfg config.RiskConfig,
	log *logger.Logger,
) *EscalationEngine {
	return &EscalationEngine{
		flagged:       flagged,
		alerts:        alerts,
		interventions: interventions,
		snapshotMax:   cfg.SnapshotMaxChars,
		logger:        log.WithComponent("escalation-engine"),
	}
}

// Process applies the per-tier policy. At most one flagged record and one
// alert are created per input; retried sends are the caller's concern.
//
//   - low: nothing persisted, reply proceeds
//   - medium: flagged record (pending), reply proceeds, flag silent to the user
//   - high: flagged record + pending alert with follow-up required; reply still
//     proceeds so monitoring stays invisible at this tier
//   - critical: flagged record + alert auto-escalated synchronously with a
//     CRITICAL_ESCALATION log entry; reply generation is skipped and the crisis
//     resources text is returned in its place
//
// For the critical tier a persistence failure is surfaced as
// ErrCriticalPersistence but the outcome still carries the crisis message:
// user safety messaging is never withheld because of a storage error.
func (e *EscalationEngine) Process(ctx context.Context, in EscalationInput, assessment *models.RiskAssessment) (*EscalationOutcome, error) {
	outcome := &EscalationOutcome{}

	if assessment.RiskLevel == models.RiskLevelLow {
		return outcome, nil
	}

	if assessment.RiskLevel == models.RiskLevelCritical {
		outcome.BlockReply = true
		outcome.CrisisMessage = CrisisResources(models.RiskLevelCritical)
	}

	rec := &models.FlaggedContent{
		ID:              uuid.New(),
		UserID:          in.UserID,
		SourceType:      in.SourceType,
		SourceContentID: in.SourceContentID,
		ContentSnapshot: truncateRunes(in.Content, e.snapshotMax),
		RiskLevel:       assessment.RiskLevel,
		Indicators:      append(append([]models.RiskIndicator{}, assessment.MatchedIndicators...), assessment.ContextualCues...),
		Reason:          assessment.RecommendedAction,
		Status:          models.StatusPending,
		CreatedAt:       time.Now(),
	}

	if err := e.createWithRetry(ctx, assessment.RiskLevel, "flagged content", func() error {
		return e.flagged.Create(ctx, rec)
	}); err != nil {
		return e.failPersistence(outcome, assessment.RiskLevel, err)
	}
	outcome.Flagged = rec

	e.logger.Info().
		Str("user_id", in.UserID.String()).
		Str("source_type", string(in.SourceType)).
		Str("risk_level", string(assessment.RiskLevel)).
		Int("score", assessment.Score).
		Msg("content flagged")

	if assessment.RiskLevel != models.RiskLevelHigh && assessment.RiskLevel != models.RiskLevelCritical {
		return outcome, nil
	}

	alert := &models.AdminAlert{
		ID:               uuid.New(),
		Timestamp:        time.Now(),
		UserID:           in.UserID,
		ConversationID:   in.SourceContentID,
		MessageContent:   truncateRunes(in.Content, e.snapshotMax),
		RiskAnalysis:     *assessment,
		Status:           models.StatusPending,
		FollowUpRequired: true,
	}

	if err := e.createWithRetry(ctx, assessment.RiskLevel, "admin alert", func() error {
		return e.alerts.Create(ctx, alert)
	}); err != nil {
		return e.failPersistence(outcome, assessment.RiskLevel, err)
	}
	outcome.Alert = alert

	if assessment.RiskLevel == models.RiskLevelCritical {
		if err := e.escalateCritical(ctx, alert); err != nil {
			return e.failPersistence(outcome, assessment.RiskLevel, err)
		}
	}

	return outcome, nil
}

// escalateCritical transitions a freshly created critical alert to escalated
// and writes the automatic intervention entry, synchronously, before the
// caller regains control.
func (e *EscalationEngine) escalateCritical(ctx context.Context, alert *models.AdminAlert) error {
	alert.Status = models.StatusEscalated
	if err := e.alerts.Update(ctx, alert); err != nil {
		return fmt.Errorf("failed to escalate alert: %w", err)
	}

	entry := &models.InterventionLogEntry{
		ID:          uuid.New(),
		AlertID:     alert.ID,
		Timestamp:   time.Now(),
		Action:      models.ActionCriticalEscalation,
		PerformedBy: models.SystemActor,
		Outcome:     "automatically escalated due to critical suicide risk level",
	}
	if err := e.interventions.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to log critical escalation: %w", err)
	}

	e.logger.Error().
		Str("alert_id", alert.ID.String()).
		Str("user_id", alert.UserID.String()).
		Str("conversation_id", alert.ConversationID.String()).
		Float64("confidence", alert.RiskAnalysis.Confidence).
		Msg("critical case escalated")

	return nil
}

// createWithRetry writes once for critical (the caller handles failure as
// fatal) and retries once for lower tiers before surfacing the error.
func (e *EscalationEngine) createWithRetry(ctx context.Context, level models.RiskLevel, what string, create func() error) error {
	err := create()
	if err == nil {
		return nil
	}
	if level == models.RiskLevelCritical {
		return err
	}

	e.logger.Warn().Err(err).Str("record", what).Msg("persistence failed, retrying once")
	if err := create(); err != nil {
		return fmt.Errorf("failed to persist %s after retry: %w", what, err)
	}
	return nil
}

// failPersistence wraps a storage failure per tier policy. Critical failures
// keep the crisis message in the outcome so the user surface can still show it.
func (e *EscalationEngine) failPersistence(outcome *EscalationOutcome, level models.RiskLevel, err error) (*EscalationOutcome, error) {
	if level == models.RiskLevelCritical {
		e.logger.Error().Err(err).Msg("critical risk case could not be recorded")
		return outcome, fmt.Errorf("%w: %v", ErrCriticalPersistence, err)
	}
	return outcome, err
}

// truncateRunes bounds the snapshot length without splitting a multibyte
// character.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
