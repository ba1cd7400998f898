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

// JournalHandler handles journal endpoints
type JournalHandler struct {
	journal *services.JournalService
	logger  *logger.Logger
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journal *services.JournalService, log *logger.Logger) *JournalHandler {
	return &JournalHandler{
		journal: journal,
		logger:  log.WithComponent("journal-handler"),
	}
}

// JournalEntryRequest is the request body for creating or updating an entry
type JournalEntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Mood    string `json:"mood,omitempty"`
}

// Create handles POST /api/v1/journal
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	req, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	result, err := h.journal.Create(r.Context(), userID, req.Title, req.Content, req.Mood)
	h.respondResult(w, result, err, http.StatusCreated)
}

// Update handles PUT /api/v1/journal/{id}
func (h *JournalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	req, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}

	result, uerr := h.journal.Update(r.Context(), userID, entryID, req.Title, req.Content, req.Mood)
	h.respondResult(w, result, uerr, http.StatusOK)
}

// Get handles GET /api/v1/journal/{id}
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := h.journal.Get(r.Context(), userID, entryID)
	if err != nil {
		if errors.Is(err, services.ErrJournalEntryNotFound) {
			respondError(w, http.StatusNotFound, "journal entry not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to load journal entry")
		respondError(w, http.StatusInternalServerError, "failed to load journal entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

func (h *JournalHandler) decodeEntry(w http.ResponseWriter, r *http.Request) (JournalEntryRequest, bool) {
	var req JournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return req, false
	}
	return req, true
}

func (h *JournalHandler) respondResult(w http.ResponseWriter, result *services.JournalResult, err error, okStatus int) {
	if err != nil {
		switch {
		case errors.Is(err, services.ErrJournalEntryNotFound):
			respondError(w, http.StatusNotFound, "journal entry not found")
		case errors.Is(err, services.ErrCriticalPersistence):
			h.logger.Error().Err(err).Msg("critical case not persisted")
			respondJSON(w, http.StatusInternalServerError, map[string]any{
				"error": "failed to record risk case",
				"data":  result,
			})
		default:
			h.logger.Error().Err(err).Msg("failed to save journal entry")
			respondError(w, http.StatusInternalServerError, "failed to save journal entry")
		}
		return
	}
	respondJSON(w, okStatus, result)
}
