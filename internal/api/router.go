package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mindguard-lab/internal/api/handlers"
	apimiddleware "mindguard-lab/internal/api/middleware"
	"mindguard-lab/internal/config"
	"mindguard-lab/internal/infrastructure/cache"
	"mindguard-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting requires Redis
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	} else if r.config.RateLimit.Enabled {
		r.logger.Warn().Msg("rate limiting enabled but cache unavailable, skipping")
	}

	// Public routes
	router.Group(func(pub chi.Router) {
		pub.Get("/health", r.handlers.Health.Check)
		pub.Get("/ready", r.handlers.Health.Ready)
	})

	// API v1 routes (authenticated)
	router.Route("/api/v1", func(api chi.Router) {
		api.Use(apimiddleware.JWTAuth(r.config.JWT.Secret))

		// Companion conversations
		api.Route("/conversations", func(conv chi.Router) {
			conv.Post("/", r.handlers.Chat.CreateConversation)
			conv.Get("/{id}", r.handlers.Chat.GetConversation)
			conv.Post("/{id}/messages", r.handlers.Chat.SendMessage)
		})

		// Journal
		api.Route("/journal", func(journal chi.Router) {
			journal.Post("/", r.handlers.Journal.Create)
			journal.Get("/{id}", r.handlers.Journal.Get)
			journal.Put("/{id}", r.handlers.Journal.Update)
		})

		// Reviewer endpoints
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(apimiddleware.AdminAuth())

			admin.Route("/flagged", func(flagged chi.Router) {
				flagged.Get("/", r.handlers.Admin.ListFlagged)
				flagged.Get("/{id}", r.handlers.Admin.GetFlagged)
				flagged.Post("/{id}/review", r.handlers.Admin.ReviewFlagged)
				flagged.Post("/{id}/contact", r.handlers.Admin.ContactFlagged)
			})

			admin.Route("/alerts", func(alerts chi.Router) {
				alerts.Get("/", r.handlers.Admin.ListAlerts)
				alerts.Get("/{id}", r.handlers.Admin.GetAlert)
				alerts.Post("/{id}/review", r.handlers.Admin.ReviewAlert)
				alerts.Post("/{id}/escalate", r.handlers.Admin.EscalateAlert)
			})

			admin.Get("/report", r.handlers.Admin.Report)
		})
	})

	return router
}
