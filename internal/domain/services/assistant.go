package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/pkg/logger"
)

// TherapistSystemPrompt frames the companion persona. It is the first message
// of every conversation and is hidden from the user.
const TherapistSystemPrompt = "You are Dr. Sarah, a compassionate and experienced licensed psychiatrist and therapist. Your role is to provide empathetic mental health support in a safe, non-judgmental environment. When starting a conversation, warmly introduce yourself and ask about the user's day or current feelings. Throughout the conversation, actively listen, validate their emotions, ask thoughtful follow-up questions, and offer gentle guidance when appropriate. Use a warm, professional tone that makes users feel heard and understood. Avoid making formal diagnoses or prescribing medication, and always encourage seeking help from qualified professionals for urgent concerns."

// InitialGreeting opens every new conversation
const InitialGreeting = "Hello! I'm Dr. Sarah, and I'm here to listen and support you. How has your day been treating you so far? I'd love to hear what's on your mind or how you're feeling right now."

// ReplyGenerator produces the assistant's reply for a conversation. It is only
// invoked when the risk tier is not critical; the crisis short-circuit happens
// before any call here.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []models.ChatMessage) (string, error)
}

// assistantClient calls an OpenAI-compatible chat completions endpoint
type assistantClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	logger     *logger.Logger
}

// NewAssistantClient creates the HTTP reply generator
func NewAssistantClient(cfg config.AssistantConfig, log *logger.Logger) ReplyGenerator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 512
	}
	return &assistantClient{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("assistant-client"),
	}
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *assistantClient) GenerateReply(ctx context.Context, history []models.ChatMessage) (string, error) {
	messages := make([]chatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, chatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("completion request returned status %d: %s", resp.StatusCode, msg)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	reply := strings.TrimSpace(result.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("completion response was empty")
	}
	return reply, nil
}
