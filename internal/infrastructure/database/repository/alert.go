package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindguard-lab/internal/domain/models"
)

// AlertRepository handles admin alert persistence
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// Create inserts a new admin alert
func (r *AlertRepository) Create(ctx context.Context, alert *models.AdminAlert) error {
	analysis, err := json.Marshal(alert.RiskAnalysis)
	if err != nil {
		return fmt.Errorf("failed to encode risk analysis: %w", err)
	}

	query := `
		INSERT INTO admin_alerts (
			id, created_at, user_id, conversation_id, message_content,
			risk_level, risk_analysis, status, follow_up_required, escalated_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		alert.ID, alert.Timestamp, alert.UserID, alert.ConversationID, alert.MessageContent,
		alert.RiskAnalysis.RiskLevel, analysis, alert.Status, alert.FollowUpRequired,
		uuidsToStrings(alert.EscalatedTo),
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// GetByID retrieves one alert, or nil when it does not exist
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AdminAlert, error) {
	query := selectAlert + ` WHERE id = $1`
	alert, err := scanAlert(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return alert, err
}

// Update persists review-mutable fields
func (r *AlertRepository) Update(ctx context.Context, alert *models.AdminAlert) error {
	query := `
		UPDATE admin_alerts SET
			status = $2,
			assigned_to = $3,
			notes = $4,
			escalated_to = $5
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		alert.ID, alert.Status, alert.AssignedTo,
		nullIfEmpty(alert.Notes), uuidsToStrings(alert.EscalatedTo),
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alert %s not found", alert.ID)
	}
	return nil
}

// List retrieves alerts matching the filter, most severe first and newest
// first within a tier.
func (r *AlertRepository) List(ctx context.Context, filter models.AlertFilter) ([]*models.AdminAlert, error) {
	where := " WHERE 1=1"
	args := []any{}
	arg := 1

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", arg)
		args = append(args, filter.Status)
		arg++
	}
	if filter.RiskLevel != "" {
		where += fmt.Sprintf(" AND risk_level = $%d", arg)
		args = append(args, filter.RiskLevel)
		arg++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := selectAlert + where + severityOrder + fmt.Sprintf(" LIMIT %d OFFSET %d", limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// ListCreatedSince returns all alerts created at or after the cutoff
func (r *AlertRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.AdminAlert, error) {
	query := selectAlert + ` WHERE created_at >= $1` + severityOrder

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

const selectAlert = `
	SELECT id, created_at, user_id, conversation_id, message_content,
		   risk_analysis, status, assigned_to, COALESCE(notes, ''),
		   escalated_to, follow_up_required
	FROM admin_alerts`

// severityOrder sorts critical before high before medium before low, newest
// first within a tier.
const severityOrder = `
	ORDER BY CASE risk_level
		WHEN 'critical' THEN 4
		WHEN 'high' THEN 3
		WHEN 'medium' THEN 2
		ELSE 1
	END DESC, created_at DESC`

func scanAlert(row pgx.Row) (*models.AdminAlert, error) {
	var alert models.AdminAlert
	var analysis []byte
	var escalatedTo []string

	err := row.Scan(
		&alert.ID, &alert.Timestamp, &alert.UserID, &alert.ConversationID, &alert.MessageContent,
		&analysis, &alert.Status, &alert.AssignedTo, &alert.Notes,
		&escalatedTo, &alert.FollowUpRequired,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	if err := json.Unmarshal(analysis, &alert.RiskAnalysis); err != nil {
		return nil, fmt.Errorf("failed to decode risk analysis: %w", err)
	}
	alert.EscalatedTo, err = stringsToUUIDs(escalatedTo)
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func collectAlerts(rows pgx.Rows) ([]*models.AdminAlert, error) {
	var alerts []*models.AdminAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}
