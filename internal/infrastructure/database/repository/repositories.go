package repository

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all persistence implementations
type Repositories struct {
	Flagged       *FlaggedContentRepository
	Alerts        *AlertRepository
	Interventions *InterventionLogRepository
	Conversations *ConversationRepository
	Journal       *JournalRepository
}

// NewRepositories creates all repositories sharing one pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Flagged:       NewFlaggedContentRepository(pool),
		Alerts:        NewAlertRepository(pool),
		Interventions: NewInterventionLogRepository(pool),
		Conversations: NewConversationRepository(pool),
		Journal:       NewJournalRepository(pool),
	}
}

// nullIfEmpty maps "" to SQL NULL
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// uuidsToStrings converts a uuid slice for a text[] column
func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// stringsToUUIDs parses a text[] column back into uuids
func stringsToUUIDs(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q in column: %w", v, err)
		}
		out = append(out, id)
	}
	return out, nil
}
