package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindguard-lab/internal/domain/models"
)

// InterventionLogRepository handles the append-only intervention audit trail.
// Entries are never updated or deleted.
type InterventionLogRepository struct {
	pool *pgxpool.Pool
}

// NewInterventionLogRepository creates a new intervention log repository
func NewInterventionLogRepository(pool *pgxpool.Pool) *InterventionLogRepository {
	return &InterventionLogRepository{pool: pool}
}

// Append writes one log entry
func (r *InterventionLogRepository) Append(ctx context.Context, entry *models.InterventionLogEntry) error {
	query := `
		INSERT INTO intervention_log (
			id, alert_id, created_at, action, performed_by, outcome, next_steps
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.AlertID, entry.Timestamp, entry.Action, entry.PerformedBy,
		nullIfEmpty(entry.Outcome), nullIfEmpty(entry.NextSteps),
	)
	if err != nil {
		return fmt.Errorf("failed to append intervention log: %w", err)
	}
	return nil
}

// ListByAlert returns an alert's entries oldest-first
func (r *InterventionLogRepository) ListByAlert(ctx context.Context, alertID uuid.UUID) ([]*models.InterventionLogEntry, error) {
	query := `
		SELECT id, alert_id, created_at, action, performed_by,
			   COALESCE(outcome, ''), COALESCE(next_steps, '')
		FROM intervention_log
		WHERE alert_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list intervention log: %w", err)
	}
	defer rows.Close()

	var entries []*models.InterventionLogEntry
	for rows.Next() {
		var e models.InterventionLogEntry
		if err := rows.Scan(&e.ID, &e.AlertID, &e.Timestamp, &e.Action, &e.PerformedBy, &e.Outcome, &e.NextSteps); err != nil {
			return nil, fmt.Errorf("failed to scan intervention log entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
