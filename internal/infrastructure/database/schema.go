package database

import (
	"context"
	"fmt"
)

// schema holds the idempotent DDL applied at startup. Every statement is
// IF NOT EXISTS so repeated boots are safe.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		title TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		risk_level TEXT,
		flagged BOOLEAN NOT NULL DEFAULT FALSE,
		flag_reason TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_conversations_user_id ON conversations(user_id)`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id UUID PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id),
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation ON chat_messages(conversation_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS journal_entries (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		mood TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		risk_level TEXT,
		flagged BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_entries_user_id ON journal_entries(user_id)`,

	`CREATE TABLE IF NOT EXISTS flagged_content (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		source_type TEXT NOT NULL,
		source_content_id UUID NOT NULL,
		content_snapshot TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		indicators JSONB,
		reason TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		reviewed_by UUID,
		reviewed_at TIMESTAMPTZ,
		notes TEXT,
		action_taken TEXT,
		escalated_to TEXT[],
		contacted_user BOOLEAN NOT NULL DEFAULT FALSE,
		contacted_at TIMESTAMPTZ,
		contact_method TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_flagged_content_status ON flagged_content(status)`,
	`CREATE INDEX IF NOT EXISTS idx_flagged_content_user_id ON flagged_content(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_flagged_content_created_at ON flagged_content(created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS admin_alerts (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		user_id UUID NOT NULL,
		conversation_id UUID NOT NULL,
		message_content TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		risk_analysis JSONB NOT NULL,
		status TEXT NOT NULL,
		assigned_to UUID,
		notes TEXT,
		escalated_to TEXT[],
		follow_up_required BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_admin_alerts_status ON admin_alerts(status)`,
	`CREATE INDEX IF NOT EXISTS idx_admin_alerts_created_at ON admin_alerts(created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS intervention_log (
		id UUID PRIMARY KEY,
		alert_id UUID NOT NULL REFERENCES admin_alerts(id),
		created_at TIMESTAMPTZ NOT NULL,
		action TEXT NOT NULL,
		performed_by TEXT NOT NULL,
		outcome TEXT,
		next_steps TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_intervention_log_alert ON intervention_log(alert_id, created_at)`,
}

// Migrate applies the schema
func (db *PostgresDB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	db.logger.Info().Msg("database schema up to date")
	return nil
}
