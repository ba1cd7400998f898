package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mindguard-lab/internal/config"
	"mindguard-lab/pkg/logger"
)

// ExternalClassifier is an optional auxiliary risk signal beyond lexical
// matching. Implementations are best-effort: callers treat any error as the
// signal being absent and continue with lexicon-only results.
type ExternalClassifier interface {
	// Classify returns true when the external model flags the text as
	// crisis-positive.
	Classify(ctx context.Context, text, conversationID, userID string) (bool, error)
	// Enabled reports whether a real backend is configured
	Enabled() bool
}

// NewExternalClassifier returns an HTTP-backed classifier when configured,
// otherwise the disabled variant.
func NewExternalClassifier(cfg config.ClassifierConfig, log *logger.Logger) ExternalClassifier {
	if !cfg.Enabled || cfg.URL == "" {
		return disabledClassifier{}
	}
	return newHTTPClassifier(cfg, log)
}

// disabledClassifier is the no-backend variant; it always reports the signal
// as absent without error.
type disabledClassifier struct{}

func (disabledClassifier) Classify(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (disabledClassifier) Enabled() bool { return false }

// httpClassifier calls the crisis classification service over HTTP
type httpClassifier struct {
	url        string
	httpClient *http.Client
	logger     *logger.Logger
}

func newHTTPClassifier(cfg config.ClassifierConfig, log *logger.Logger) *httpClassifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	return &httpClassifier{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithComponent("external-classifier"),
	}
}

type classifyRequest struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

type classifyResponse struct {
	Classification bool `json:"mcp_classification"`
}

func (c *httpClassifier) Enabled() bool { return true }

func (c *httpClassifier) Classify(ctx context.Context, text, conversationID, userID string) (bool, error) {
	body, err := json.Marshal(classifyRequest{
		Text:           text,
		ConversationID: conversationID,
		UserID:         userID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("classify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("classify request returned status %d", resp.StatusCode)
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode classify response: %w", err)
	}

	return result.Classification, nil
}
