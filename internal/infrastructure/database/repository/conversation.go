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

// ConversationRepository handles conversation and message persistence
type ConversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

// Create inserts a conversation and any seeded messages
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (
			id, user_id, title, created_at, updated_at, risk_level, flagged, flag_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		conv.ID, conv.UserID, conv.Title, conv.CreatedAt, conv.UpdatedAt,
		nullIfEmpty(string(conv.RiskLevel)), conv.Flagged, nullIfEmpty(conv.FlagReason),
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	for i := range conv.Messages {
		if err := r.AppendMessage(ctx, &conv.Messages[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns a conversation without its messages, or nil if missing
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	query := `
		SELECT id, user_id, title, created_at, updated_at,
			   COALESCE(risk_level, ''), flagged, COALESCE(flag_reason, '')
		FROM conversations
		WHERE id = $1`

	var conv models.Conversation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt,
		&conv.RiskLevel, &conv.Flagged, &conv.FlagReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

// Update persists the mutable conversation fields
func (r *ConversationRepository) Update(ctx context.Context, conv *models.Conversation) error {
	query := `
		UPDATE conversations SET
			title = $2, updated_at = $3, risk_level = $4, flagged = $5, flag_reason = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		conv.ID, conv.Title, conv.UpdatedAt,
		nullIfEmpty(string(conv.RiskLevel)), conv.Flagged, nullIfEmpty(conv.FlagReason),
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation not found: %s", conv.ID)
	}
	return nil
}

// AppendMessage inserts one message
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.ConversationID, msg.Role, msg.Content, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// History returns all of a conversation's messages oldest-first
func (r *ConversationRepository) History(ctx context.Context, conversationID uuid.UUID) ([]models.ChatMessage, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM chat_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message history: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
