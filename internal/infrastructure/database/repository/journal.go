package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindguard-lab/internal/domain/models"
)

// JournalRepository handles journal entry persistence
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Create inserts a journal entry
func (r *JournalRepository) Create(ctx context.Context, entry *models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (
			id, user_id, title, content, mood, created_at, updated_at, risk_level, flagged
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.UserID, entry.Title, entry.Content, nullIfEmpty(entry.Mood),
		entry.CreatedAt, entry.UpdatedAt, nullIfEmpty(string(entry.RiskLevel)), entry.Flagged,
	)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

// GetByID returns a journal entry, or nil if missing
func (r *JournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	query := `
		SELECT id, user_id, title, content, COALESCE(mood, ''),
			   created_at, updated_at, COALESCE(risk_level, ''), flagged
		FROM journal_entries
		WHERE id = $1`

	var entry models.JournalEntry
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Content, &entry.Mood,
		&entry.CreatedAt, &entry.UpdatedAt, &entry.RiskLevel, &entry.Flagged,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return &entry, nil
}

// Update persists the mutable journal entry fields
func (r *JournalRepository) Update(ctx context.Context, entry *models.JournalEntry) error {
	query := `
		UPDATE journal_entries SET
			title = $2, content = $3, mood = $4, updated_at = $5, risk_level = $6, flagged = $7
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		entry.ID, entry.Title, entry.Content, nullIfEmpty(entry.Mood),
		entry.UpdatedAt, nullIfEmpty(string(entry.RiskLevel)), entry.Flagged,
	)
	if err != nil {
		return fmt.Errorf("failed to update journal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("journal entry not found: %s", entry.ID)
	}
	return nil
}
