package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mindguard-lab/internal/api"
	"mindguard-lab/internal/api/handlers"
	"mindguard-lab/internal/config"
	"mindguard-lab/internal/domain/services"
	"mindguard-lab/internal/infrastructure/cache"
	"mindguard-lab/internal/infrastructure/database"
	"mindguard-lab/internal/infrastructure/database/repository"
	"mindguard-lab/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting MindGuard Lab")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure. Unlike purely informational services this one
	// must not come up without durable storage: flagged cases and alerts are
	// the product.
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache and rate limiting")
		redisCache = nil
	}
	defer func() {
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Initialize repositories
	repos := repository.NewRepositories(db.Pool())
	log.Info().Msg("repositories initialized")

	// Initialize the risk pipeline
	external := services.NewExternalClassifier(cfg.Classifier, log)
	classifier := services.NewRiskClassifier(cfg.Risk, external, log)
	log.Info().Bool("external_classifier", external.Enabled()).Msg("risk classifier initialized")

	escalation := services.NewEscalationEngine(repos.Flagged, repos.Alerts, repos.Interventions, cfg.Risk, log)
	assistant := services.NewAssistantClient(cfg.Assistant, log)

	chatService := services.NewChatService(repos.Conversations, classifier, escalation, assistant, log)
	journalService := services.NewJournalService(repos.Journal, classifier, escalation, log)
	flaggedService := services.NewFlaggedService(repos.Flagged, repos.Conversations, repos.Journal, log)
	alertService := services.NewAlertService(repos.Alerts, repos.Interventions, redisCache, log)

	// Initialize handlers
	h := handlers.NewHandlers(handlers.Dependencies{
		Chat:    chatService,
		Journal: journalService,
		Flagged: flaggedService,
		Alerts:  alertService,
		Cache:   redisCache,
		DB:      db,
		Logger:  log,
	})

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}
