package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mindguard-lab/internal/api/middleware"
	"mindguard-lab/internal/domain/models"
	"mindguard-lab/internal/domain/services"
	"mindguard-lab/pkg/logger"
)

// AdminHandler handles the reviewer-facing endpoints
type AdminHandler struct {
	flagged *services.FlaggedService
	alerts  *services.AlertService
	logger  *logger.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(flagged *services.FlaggedService, alerts *services.AlertService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		flagged: flagged,
		alerts:  alerts,
		logger:  log.WithComponent("admin-handler"),
	}
}

// ListFlagged handles GET /api/v1/admin/flagged
func (h *AdminHandler) ListFlagged(w http.ResponseWriter, r *http.Request) {
	filter := models.FlaggedContentFilter{
		Status:    models.ReviewStatus(r.URL.Query().Get("status")),
		RiskLevel: models.RiskLevel(r.URL.Query().Get("risk_level")),
		Limit:     queryInt(r, "limit"),
		Offset:    queryInt(r, "offset"),
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &userID
	}

	records, total, err := h.flagged.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list flagged content")
		respondError(w, http.StatusInternalServerError, "failed to list flagged content")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  records,
		"total": total,
	})
}

// GetFlagged handles GET /api/v1/admin/flagged/{id}
func (h *AdminHandler) GetFlagged(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	detail, err := h.flagged.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrFlaggedNotFound) {
			respondError(w, http.StatusNotFound, "flagged content not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to load flagged content")
		respondError(w, http.StatusInternalServerError, "failed to load flagged content")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// ReviewFlaggedRequest is the request body for reviewing flagged content
type ReviewFlaggedRequest struct {
	Status      models.ReviewStatus `json:"status,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	ActionTaken string              `json:"action_taken,omitempty"`
	EscalatedTo []uuid.UUID         `json:"escalated_to,omitempty"`
}

// ReviewFlagged handles POST /api/v1/admin/flagged/{id}/review
func (h *AdminHandler) ReviewFlagged(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req ReviewFlaggedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := h.flagged.Review(r.Context(), id, reviewerID, req.Status, req.Notes, req.ActionTaken, req.EscalatedTo)
	if err != nil {
		h.respondReviewError(w, err, "failed to review flagged content")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// ContactFlaggedRequest is the request body for recording user outreach
type ContactFlaggedRequest struct {
	Method string `json:"method"`
}

// ContactFlagged handles POST /api/v1/admin/flagged/{id}/contact
func (h *AdminHandler) ContactFlagged(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req ContactFlaggedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Method == "" {
		respondError(w, http.StatusBadRequest, "method is required")
		return
	}

	rec, err := h.flagged.Contact(r.Context(), id, reviewerID, req.Method)
	if err != nil {
		h.respondReviewError(w, err, "failed to record contact")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// ListAlerts handles GET /api/v1/admin/alerts
func (h *AdminHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := models.AlertFilter{
		Status:    models.ReviewStatus(r.URL.Query().Get("status")),
		RiskLevel: models.RiskLevel(r.URL.Query().Get("risk_level")),
		Limit:     queryInt(r, "limit"),
		Offset:    queryInt(r, "offset"),
	}

	alerts, err := h.alerts.List(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list alerts")
		respondError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  alerts,
		"total": len(alerts),
	})
}

// GetAlert handles GET /api/v1/admin/alerts/{id}
func (h *AdminHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	alert, log, err := h.alerts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAlertNotFound) {
			respondError(w, http.StatusNotFound, "alert not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to load alert")
		respondError(w, http.StatusInternalServerError, "failed to load alert")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"alert":            alert,
		"intervention_log": log,
	})
}

// ReviewAlertRequest is the request body for reviewing an alert
type ReviewAlertRequest struct {
	Status models.ReviewStatus `json:"status,omitempty"`
	Notes  string              `json:"notes,omitempty"`
}

// ReviewAlert handles POST /api/v1/admin/alerts/{id}/review
func (h *AdminHandler) ReviewAlert(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req ReviewAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := h.alerts.Review(r.Context(), id, reviewerID, req.Notes, req.Status)
	if err != nil {
		h.respondReviewError(w, err, "failed to review alert")
		return
	}

	respondJSON(w, http.StatusOK, alert)
}

// EscalateAlertRequest is the request body for escalating an alert
type EscalateAlertRequest struct {
	EscalatedTo []uuid.UUID `json:"escalated_to"`
}

// EscalateAlert handles POST /api/v1/admin/alerts/{id}/escalate
func (h *AdminHandler) EscalateAlert(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req EscalateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.EscalatedTo) == 0 {
		respondError(w, http.StatusBadRequest, "escalated_to is required")
		return
	}

	alert, err := h.alerts.Escalate(r.Context(), id, req.EscalatedTo, reviewerID.String())
	if err != nil {
		h.respondReviewError(w, err, "failed to escalate alert")
		return
	}

	respondJSON(w, http.StatusOK, alert)
}

// Report handles GET /api/v1/admin/report
func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	window := queryInt(r, "window_hours")

	report, err := h.alerts.GenerateRiskReport(r.Context(), window)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate risk report")
		respondError(w, http.StatusInternalServerError, "failed to generate risk report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (h *AdminHandler) respondReviewError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAlertNotFound):
		respondError(w, http.StatusNotFound, "alert not found")
	case errors.Is(err, services.ErrFlaggedNotFound):
		respondError(w, http.StatusNotFound, "flagged content not found")
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
