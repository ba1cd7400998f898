package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

type memConversationRepo struct {
	conversations map[uuid.UUID]*models.Conversation
	messages      map[uuid.UUID][]models.ChatMessage
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		conversations: map[uuid.UUID]*models.Conversation{},
		messages:      map[uuid.UUID][]models.ChatMessage{},
	}
}

func (m *memConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	cp := *conv
	cp.Messages = nil
	m.conversations[conv.ID] = &cp
	for _, msg := range conv.Messages {
		m.messages[conv.ID] = append(m.messages[conv.ID], msg)
	}
	return nil
}

func (m *memConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv, ok := m.conversations[id]
	if !ok {
		return nil, nil
	}
	cp := *conv
	return &cp, nil
}

func (m *memConversationRepo) Update(ctx context.Context, conv *models.Conversation) error {
	if _, ok := m.conversations[conv.ID]; !ok {
		return errors.New("not found")
	}
	cp := *conv
	cp.Messages = nil
	m.conversations[conv.ID] = &cp
	return nil
}

func (m *memConversationRepo) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], *msg)
	return nil
}

func (m *memConversationRepo) History(ctx context.Context, conversationID uuid.UUID) ([]models.ChatMessage, error) {
	return append([]models.ChatMessage{}, m.messages[conversationID]...), nil
}

type stubAssistant struct {
	reply string
	err   error
	calls int
}

func (s *stubAssistant) GenerateReply(ctx context.Context, history []models.ChatMessage) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newTestChatService(conversations *memConversationRepo, assistant *stubAssistant) (*ChatService, *memFlaggedRepo, *memAlertRepo) {
	cfg := config.DefaultRiskConfig()
	log := logger.NewDefault()
	external := NewExternalClassifier(config.ClassifierConfig{Enabled: false}, log)
	classifier := NewRiskClassifier(cfg, external, log)

	flagged, alerts, logs := newMemFlaggedRepo(), newMemAlertRepo(), &memLogRepo{}
	escalation := NewEscalationEngine(flagged, alerts, logs, cfg, log)

	return NewChatService(conversations, classifier, escalation, assistant, log), flagged, alerts
}

func TestCreateConversationSeedsGreeting(t *testing.T) {
	repo := newMemConversationRepo()
	svc, _, _ := newTestChatService(repo, &stubAssistant{reply: "hi"})

	conv, err := svc.CreateConversation(context.Background(), uuid.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.Title != "New Chat" {
		t.Errorf("expected default title, got %q", conv.Title)
	}

	history, _ := repo.History(context.Background(), conv.ID)
	if len(history) != 2 {
		t.Fatalf("expected system prompt + greeting, got %d messages", len(history))
	}
	if history[0].Role != models.RoleSystem {
		t.Errorf("first message should be the system prompt, got %s", history[0].Role)
	}
	if history[1].Role != models.RoleAssistant || !strings.Contains(history[1].Content, "Dr. Sarah") {
		t.Errorf("second message should be the greeting, got %+v", history[1])
	}
}

func TestSendMessageNormalReply(t *testing.T) {
	repo := newMemConversationRepo()
	assistant := &stubAssistant{reply: "that sounds like a lovely day"}
	svc, flagged, _ := newTestChatService(repo, assistant)

	userID := uuid.New()
	conv, _ := svc.CreateConversation(context.Background(), userID, "")

	result, err := svc.SendMessage(context.Background(), userID, conv.ID, "The weather is nice today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CrisisResponse {
		t.Error("neutral text should not trigger a crisis response")
	}
	if result.Reply.Content != assistant.reply {
		t.Errorf("expected assistant reply, got %q", result.Reply.Content)
	}
	if len(flagged.records) != 0 {
		t.Error("neutral text must not be flagged")
	}
}

func TestSendMessageCriticalSubstitutesReply(t *testing.T) {
	repo := newMemConversationRepo()
	assistant := &stubAssistant{reply: "should never be used"}
	svc, flagged, alerts := newTestChatService(repo, assistant)

	userID := uuid.New()
	conv, _ := svc.CreateConversation(context.Background(), userID, "")

	result, err := svc.SendMessage(context.Background(), userID, conv.ID, "I want to kill myself tonight")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.CrisisResponse {
		t.Fatal("critical text must trigger a crisis response")
	}
	if !strings.Contains(result.Reply.Content, "988") {
		t.Error("crisis reply should carry the 988 lifeline")
	}
	if assistant.calls != 0 {
		t.Error("reply generation must be skipped on the critical tier")
	}
	if len(flagged.records) != 1 || len(alerts.alerts) != 1 {
		t.Errorf("expected 1 flagged record and 1 alert, got %d/%d", len(flagged.records), len(alerts.alerts))
	}

	// The user's own message must still be recorded before substitution
	history, _ := repo.History(context.Background(), conv.ID)
	var sawUser bool
	for _, msg := range history {
		if msg.Role == models.RoleUser && msg.Content == "I want to kill myself tonight" {
			sawUser = true
		}
	}
	if !sawUser {
		t.Error("user message missing from history")
	}

	stored, _ := repo.GetByID(context.Background(), conv.ID)
	if !stored.Flagged || stored.RiskLevel != models.RiskLevelCritical {
		t.Errorf("conversation risk state not updated: %+v", stored)
	}
}

func TestSendMessageAssistantFailureFallsBack(t *testing.T) {
	repo := newMemConversationRepo()
	assistant := &stubAssistant{err: errors.New("upstream timeout")}
	svc, _, _ := newTestChatService(repo, assistant)

	userID := uuid.New()
	conv, _ := svc.CreateConversation(context.Background(), userID, "")

	result, err := svc.SendMessage(context.Background(), userID, conv.ID, "The weather is nice today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply.Content == "" {
		t.Error("fallback reply should not be empty")
	}
}

func TestSendMessageOwnership(t *testing.T) {
	repo := newMemConversationRepo()
	svc, _, _ := newTestChatService(repo, &stubAssistant{reply: "hi"})

	owner := uuid.New()
	conv, _ := svc.CreateConversation(context.Background(), owner, "")

	_, err := svc.SendMessage(context.Background(), uuid.New(), conv.ID, "hello")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("foreign conversations must look like missing ones, got %v", err)
	}
}

func TestSendMessageSustainedRiskEscalates(t *testing.T) {
	repo := newMemConversationRepo()
	assistant := &stubAssistant{reply: "I'm here with you"}
	svc, _, _ := newTestChatService(repo, assistant)

	userID := uuid.New()
	conv, _ := svc.CreateConversation(context.Background(), userID, "")

	text := "I feel really sad and overwhelmed lately"

	first, err := svc.SendMessage(context.Background(), userID, conv.ID, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cue := range first.Assessment.ContextualCues {
		if cue.Category == models.CategoryEscalation {
			t.Fatal("a single risky message must not earn the escalation bonus")
		}
	}

	second, err := svc.SendMessage(context.Background(), userID, conv.ID, text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawCue bool
	for _, cue := range second.Assessment.ContextualCues {
		if cue.Category == models.CategoryEscalation && cue.Matched == EscalatingPatternCue {
			sawCue = true
		}
	}
	if !sawCue {
		t.Error("second consecutive risky message should carry the escalating-pattern cue")
	}
	if second.Assessment.Score <= first.Assessment.Score {
		t.Errorf("sustained risk should score above an isolated message: %d vs %d",
			second.Assessment.Score, first.Assessment.Score)
	}
}
