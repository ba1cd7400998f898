package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// replyFallback is sent when the reply generator is unavailable. Risk handling
// has already completed by the time it is used.
const replyFallback = "I'm having a little trouble responding right now, but I'm still here with you. Could you tell me more about how you're feeling?"

// ChatService orchestrates the per-message pipeline: record the user message,
// classify, escalate, then either substitute the crisis resources text or
// generate a normal reply. The pipeline for one message runs as a unit; the
// critical-tier short-circuit depends on classification completing first.
type ChatService struct {
	conversations ConversationRepository
	classifier    *RiskClassifier
	escalation    *EscalationEngine
	assistant     ReplyGenerator
	logger        *logger.Logger
}

// NewChatService creates the chat pipeline service
func NewChatService(
	conversations ConversationRepository,
	classifier *RiskClassifier,
	escalation *EscalationEngine,
	assistant ReplyGenerator,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		conversations: conversations,
		classifier:    classifier,
		escalation:    escalation,
		assistant:     assistant,
		logger:        log.WithComponent("chat-service"),
	}
}

// CreateConversation starts a conversation seeded with the hidden system
// prompt and the visible greeting.
func (s *ChatService) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*models.Conversation, error) {
	if title == "" {
		title = "New Chat"
	}

	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		RiskLevel: models.RiskLevelLow,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	seed := []models.ChatMessage{
		{ID: uuid.New(), ConversationID: conv.ID, Role: models.RoleSystem, Content: TherapistSystemPrompt, Timestamp: now},
		{ID: uuid.New(), ConversationID: conv.ID, Role: models.RoleAssistant, Content: InitialGreeting, Timestamp: now},
	}
	for i := range seed {
		if err := s.conversations.AppendMessage(ctx, &seed[i]); err != nil {
			return nil, fmt.Errorf("failed to seed conversation: %w", err)
		}
	}
	conv.Messages = seed

	return conv, nil
}

// GetConversation loads a conversation with its history, enforcing ownership
func (s *ChatService) GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	history, err := s.conversations.History(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	conv.Messages = history
	return conv, nil
}

// ErrConversationNotFound is returned for unknown or foreign conversations
var ErrConversationNotFound = errors.New("conversation not found")

// SendMessageResult carries the outcome of one user message
type SendMessageResult struct {
	UserMessage    models.ChatMessage     `json:"user_message"`
	Reply          models.ChatMessage     `json:"reply"`
	Assessment     *models.RiskAssessment `json:"assessment,omitempty"`
	CrisisResponse bool                   `json:"crisis_response"`
}

// SendMessage runs the full pipeline for one inbound user message. The user's
// message is always recorded before any substitution. On a critical tier the
// assistant reply is replaced with the crisis resources text; a persistence
// failure on that tier is returned as an error alongside the result so the
// crisis text still reaches the user while operators see the failure.
func (s *ChatService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (*SendMessageResult, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}

	history, err := s.conversations.History(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	userMsg := models.ChatMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        content,
		Timestamp:      time.Now(),
	}
	if err := s.conversations.AppendMessage(ctx, &userMsg); err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	// The recorded message is part of the history window, so two risky
	// messages in a row are enough for the escalation heuristic.
	history = append(history, userMsg)

	assessment := s.classifier.Classify(ctx, content, &ConversationContext{
		UserID:         userID.String(),
		ConversationID: conversationID.String(),
		Messages:       history,
	})

	outcome, escErr := s.escalation.Process(ctx, EscalationInput{
		UserID:          userID,
		SourceType:      models.SourceTypeChat,
		SourceContentID: conversationID,
		Content:         content,
	}, assessment)
	if escErr != nil && !errors.Is(escErr, ErrCriticalPersistence) {
		return nil, escErr
	}

	if assessment.Flagged() {
		conv.RiskLevel = assessment.RiskLevel
		conv.Flagged = true
		conv.FlagReason = string(assessment.RecommendedAction)
		conv.UpdatedAt = time.Now()
		if err := s.conversations.Update(ctx, conv); err != nil {
			s.logger.Warn().Err(err).Str("conversation_id", conversationID.String()).Msg("failed to update conversation risk state")
		}
	}

	var replyContent string
	if outcome != nil && outcome.BlockReply {
		replyContent = outcome.CrisisMessage
	} else {
		replyContent, err = s.assistant.GenerateReply(ctx, history)
		if err != nil {
			s.logger.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("reply generation failed, using fallback")
			replyContent = replyFallback
		}
	}

	reply := models.ChatMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        replyContent,
		Timestamp:      time.Now(),
	}
	if err := s.conversations.AppendMessage(ctx, &reply); err != nil {
		// The reply is already decided; losing the stored copy is reported but
		// the user still receives it.
		s.logger.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("failed to record reply")
	}

	result := &SendMessageResult{
		UserMessage:    userMsg,
		Reply:          reply,
		Assessment:     assessment,
		CrisisResponse: outcome != nil && outcome.BlockReply,
	}
	return result, escErr
}
