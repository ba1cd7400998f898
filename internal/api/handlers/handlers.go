package handlers

import (
	"encoding/json"
	"net/http"

	"mindguard-lab/internal/domain/services"
	"mindguard-lab/internal/infrastructure/cache"
	"mindguard-lab/internal/infrastructure/database"
	"mindguard-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health  *HealthHandler
	Chat    *ChatHandler
	Journal *JournalHandler
	Admin   *AdminHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Chat    *services.ChatService
	Journal *services.JournalService
	Flagged *services.FlaggedService
	Alerts  *services.AlertService
	Cache   *cache.RedisCache
	DB      *database.PostgresDB
	Logger  *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Cache, deps.DB, deps.Logger),
		Chat:    NewChatHandler(deps.Chat, deps.Logger),
		Journal: NewJournalHandler(deps.Journal, deps.Logger),
		Admin:   NewAdminHandler(deps.Flagged, deps.Alerts, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
