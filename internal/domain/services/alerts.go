package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/domain/models"
	"mindguard-lab/internal/infrastructure/cache"
	"mindguard-lab/pkg/logger"
)

const riskReportCacheTTL = time.Minute

// AlertService owns the review lifecycle of admin alerts: pending alerts move
// to reviewed, escalated or resolved, and every transition appends an
// intervention log entry. Resolved is terminal.
type AlertService struct {
	alerts        AlertRepository
	interventions InterventionLogRepository
	cache         *cache.RedisCache
	logger        *logger.Logger
}

// NewAlertService creates an alert service. Cache may be nil; reports are then
// computed on every call.
func NewAlertService(alerts AlertRepository, interventions InterventionLogRepository, c *cache.RedisCache, log *logger.Logger) *AlertService {
	return &AlertService{
		alerts:        alerts,
		interventions: interventions,
		cache:         c,
		logger:        log.WithComponent("alert-service"),
	}
}

// Get returns one alert with its intervention log, or ErrAlertNotFound
func (s *AlertService) Get(ctx context.Context, alertID uuid.UUID) (*models.AdminAlert, []*models.InterventionLogEntry, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, nil, err
	}
	if alert == nil {
		return nil, nil, ErrAlertNotFound
	}

	log, err := s.interventions.ListByAlert(ctx, alertID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load intervention log: %w", err)
	}
	return alert, log, nil
}

// List returns alerts matching the filter, sorted most severe first and newest
// first within a tier.
func (s *AlertService) List(ctx context.Context, filter models.AlertFilter) ([]*models.AdminAlert, error) {
	return s.alerts.List(ctx, filter)
}

// Review records a reviewer decision on an alert. newStatus defaults to
// reviewed. Unknown ids fail with ErrAlertNotFound and no side effects;
// resolved alerts reject further transitions.
func (s *AlertService) Review(ctx context.Context, alertID uuid.UUID, reviewedBy uuid.UUID, notes string, newStatus models.ReviewStatus) (*models.AdminAlert, error) {
	if newStatus == "" {
		newStatus = models.StatusReviewed
	}
	if !newStatus.Valid() || newStatus == models.StatusPending {
		return nil, fmt.Errorf("%w: cannot move alert to %q", ErrInvalidTransition, newStatus)
	}

	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}
	if alert.Status == models.StatusResolved {
		return nil, fmt.Errorf("%w: alert is resolved", ErrInvalidTransition)
	}

	alert.Status = newStatus
	alert.AssignedTo = &reviewedBy
	if notes != "" {
		alert.Notes = notes
	}

	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	outcome := notes
	if outcome == "" {
		outcome = "alert reviewed by admin"
	}
	if err := s.appendLog(ctx, alertID, models.ActionAdminReview, reviewedBy.String(), outcome); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("alert_id", alertID.String()).
		Str("reviewed_by", reviewedBy.String()).
		Str("status", string(newStatus)).
		Msg("alert reviewed")

	return alert, nil
}

// Escalate manually escalates an alert to the given reviewers. Allowed from
// any non-resolved state.
func (s *AlertService) Escalate(ctx context.Context, alertID uuid.UUID, escalatedTo []uuid.UUID, performedBy string) (*models.AdminAlert, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}
	if alert.Status == models.StatusResolved {
		return nil, fmt.Errorf("%w: alert is resolved", ErrInvalidTransition)
	}

	alert.Status = models.StatusEscalated
	alert.EscalatedTo = append(alert.EscalatedTo, escalatedTo...)

	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	if err := s.appendLog(ctx, alertID, models.ActionEscalation, performedBy,
		fmt.Sprintf("escalated to %d reviewer(s)", len(escalatedTo))); err != nil {
		return nil, err
	}

	s.logger.Warn().
		Str("alert_id", alertID.String()).
		Str("performed_by", performedBy).
		Int("reviewers", len(escalatedTo)).
		Msg("alert escalated")

	return alert, nil
}

func (s *AlertService) appendLog(ctx context.Context, alertID uuid.UUID, action models.InterventionAction, performedBy, outcome string) error {
	entry := &models.InterventionLogEntry{
		ID:          uuid.New(),
		AlertID:     alertID,
		Timestamp:   time.Now(),
		Action:      action,
		PerformedBy: performedBy,
		Outcome:     outcome,
	}
	if err := s.interventions.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append intervention log: %w", err)
	}
	return nil
}

// GenerateRiskReport aggregates alert activity over the trailing window:
// counts by tier and status, mean minutes from alert creation to the first
// ADMIN_REVIEW entry for resolved alerts (zero when none), and an hourly
// creation trend. Reports are cached briefly.
func (s *AlertService) GenerateRiskReport(ctx context.Context, windowHours int) (*models.RiskReport, error) {
	if windowHours <= 0 {
		windowHours = 24
	}

	cacheKey := fmt.Sprintf("risk-report:%d", windowHours)
	if s.cache != nil {
		var cached models.RiskReport
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	since := time.Now().Add(-time.Duration(windowHours) * time.Hour)
	alerts, err := s.alerts.ListCreatedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts for report: %w", err)
	}

	report := &models.RiskReport{
		WindowHours: windowHours,
		GeneratedAt: time.Now(),
		TotalAlerts: len(alerts),
		ByRiskLevel: map[string]int{},
		ByStatus:    map[string]int{},
		HourlyTrend: map[string]int{},
	}

	var totalReviewDelay time.Duration
	reviewed := 0

	for _, alert := range alerts {
		report.ByRiskLevel[string(alert.RiskAnalysis.RiskLevel)]++
		report.ByStatus[string(alert.Status)]++
		report.HourlyTrend[fmt.Sprintf("%02d:00", alert.Timestamp.Hour())]++

		if alert.Status != models.StatusResolved {
			continue
		}
		entries, err := s.interventions.ListByAlert(ctx, alert.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load intervention log: %w", err)
		}
		for _, entry := range entries {
			if entry.Action == models.ActionAdminReview {
				totalReviewDelay += entry.Timestamp.Sub(alert.Timestamp)
				reviewed++
				break
			}
		}
	}

	if reviewed > 0 {
		report.MeanTimeToReviewMinutes = totalReviewDelay.Minutes() / float64(reviewed)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, report, riskReportCacheTTL); err != nil {
			s.logger.Debug().Err(err).Msg("failed to cache risk report")
		}
	}

	return report, nil
}
