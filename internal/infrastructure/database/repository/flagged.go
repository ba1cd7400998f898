package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindguard-lab/internal/domain/models"
)

// FlaggedContentRepository handles flagged-content persistence.
// Rows are insert-and-update only; there is no delete path (audit requirement).
type FlaggedContentRepository struct {
	pool *pgxpool.Pool
}

// NewFlaggedContentRepository creates a new flagged-content repository
func NewFlaggedContentRepository(pool *pgxpool.Pool) *FlaggedContentRepository {
	return &FlaggedContentRepository{pool: pool}
}

// Create inserts a new flagged-content record
func (r *FlaggedContentRepository) Create(ctx context.Context, rec *models.FlaggedContent) error {
	indicators, err := json.Marshal(rec.Indicators)
	if err != nil {
		return fmt.Errorf("failed to encode indicators: %w", err)
	}

	query := `
		INSERT INTO flagged_content (
			id, user_id, source_type, source_content_id, content_snapshot,
			risk_level, indicators, reason, status, created_at,
			contacted_user
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.UserID, rec.SourceType, rec.SourceContentID, rec.ContentSnapshot,
		rec.RiskLevel, indicators, rec.Reason, rec.Status, rec.CreatedAt,
		rec.ContactedUser,
	)
	if err != nil {
		return fmt.Errorf("failed to create flagged content: %w", err)
	}
	return nil
}

// GetByID retrieves one record, or nil when it does not exist
func (r *FlaggedContentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FlaggedContent, error) {
	query := selectFlagged + ` WHERE id = $1`
	rec, err := scanFlagged(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// Update persists reviewer-mutable fields
func (r *FlaggedContentRepository) Update(ctx context.Context, rec *models.FlaggedContent) error {
	query := `
		UPDATE flagged_content SET
			status = $2,
			reviewed_by = $3,
			reviewed_at = $4,
			notes = $5,
			action_taken = $6,
			escalated_to = $7,
			contacted_user = $8,
			contacted_at = $9,
			contact_method = $10
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Status, rec.ReviewedBy, rec.ReviewedAt,
		nullIfEmpty(rec.Notes), nullIfEmpty(rec.ActionTaken),
		uuidsToStrings(rec.EscalatedTo),
		rec.ContactedUser, rec.ContactedAt, nullIfEmpty(rec.ContactMethod),
	)
	if err != nil {
		return fmt.Errorf("failed to update flagged content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("flagged content %s not found", rec.ID)
	}
	return nil
}

// List retrieves records matching the filter, newest first, with total count
func (r *FlaggedContentRepository) List(ctx context.Context, filter models.FlaggedContentFilter) ([]*models.FlaggedContent, int64, error) {
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
	if filter.UserID != nil {
		where += fmt.Sprintf(" AND user_id = $%d", arg)
		args = append(args, *filter.UserID)
		arg++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM flagged_content"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count flagged content: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := selectFlagged + where + fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list flagged content: %w", err)
	}
	defer rows.Close()

	var records []*models.FlaggedContent
	for rows.Next() {
		rec, err := scanFlagged(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

const selectFlagged = `
	SELECT id, user_id, source_type, source_content_id, content_snapshot,
		   risk_level, indicators, reason, status, created_at,
		   reviewed_by, reviewed_at, COALESCE(notes, ''), COALESCE(action_taken, ''),
		   escalated_to, contacted_user, contacted_at, COALESCE(contact_method, '')
	FROM flagged_content`

func scanFlagged(row pgx.Row) (*models.FlaggedContent, error) {
	var rec models.FlaggedContent
	var indicators []byte
	var escalatedTo []string

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.SourceType, &rec.SourceContentID, &rec.ContentSnapshot,
		&rec.RiskLevel, &indicators, &rec.Reason, &rec.Status, &rec.CreatedAt,
		&rec.ReviewedBy, &rec.ReviewedAt, &rec.Notes, &rec.ActionTaken,
		&escalatedTo, &rec.ContactedUser, &rec.ContactedAt, &rec.ContactMethod,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan flagged content: %w", err)
	}

	if len(indicators) > 0 {
		if err := json.Unmarshal(indicators, &rec.Indicators); err != nil {
			return nil, fmt.Errorf("failed to decode indicators: %w", err)
		}
	}
	rec.EscalatedTo, err = stringsToUUIDs(escalatedTo)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
