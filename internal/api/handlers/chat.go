package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mindguard-lab/internal/api/middleware"
	"mindguard-lab/internal/domain/services"
	"mindguard-lab/pkg/logger"
)

// ChatHandler handles conversation endpoints
type ChatHandler struct {
	chat   *services.ChatService
	logger *logger.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chat *services.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: log.WithComponent("chat-handler"),
	}
}

// CreateConversationRequest is the request body for creating a conversation
type CreateConversationRequest struct {
	Title string `json:"title,omitempty"`
}

// SendMessageRequest is the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content"`
}

// CreateConversation handles POST /api/v1/conversations
func (h *ChatHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateConversationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	conv, err := h.chat.CreateConversation(r.Context(), userID, req.Title)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create conversation")
		respondError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}

	respondJSON(w, http.StatusCreated, conv)
}

// GetConversation handles GET /api/v1/conversations/{id}
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	conv, err := h.chat.GetConversation(r.Context(), userID, conversationID)
	if err != nil {
		if errors.Is(err, services.ErrConversationNotFound) {
			respondError(w, http.StatusNotFound, "conversation not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to load conversation")
		respondError(w, http.StatusInternalServerError, "failed to load conversation")
		return
	}

	respondJSON(w, http.StatusOK, conv)
}

// SendMessage handles POST /api/v1/conversations/{id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	result, err := h.chat.SendMessage(r.Context(), userID, conversationID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConversationNotFound):
			respondError(w, http.StatusNotFound, "conversation not found")
		case errors.Is(err, services.ErrCriticalPersistence):
			// The crisis reply is still delivered; the status tells the client
			// the case record did not persist.
			h.logger.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("critical case not persisted")
			respondJSON(w, http.StatusInternalServerError, map[string]any{
				"error": "failed to record risk case",
				"data":  result,
			})
		default:
			h.logger.Error().Err(err).Msg("failed to process message")
			respondError(w, http.StatusInternalServerError, "failed to process message")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}
