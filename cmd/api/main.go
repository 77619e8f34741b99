package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/improv-engine/internal/config"
	"github.com/jwebster45206/improv-engine/internal/game"
	"github.com/jwebster45206/improv-engine/internal/handlers"
	"github.com/jwebster45206/improv-engine/internal/logger"
	"github.com/jwebster45206/improv-engine/internal/middleware"
	"github.com/jwebster45206/improv-engine/internal/services"
	"github.com/jwebster45206/improv-engine/internal/services/events"
	"github.com/jwebster45206/improv-engine/pkg/scenario"
	"github.com/jwebster45206/improv-engine/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Improv Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"scenarios", cfg.ScenariosPath,
		"max_rounds", cfg.MaxRounds)

	catalog, err := scenario.LoadCatalog(cfg.ScenariosPath)
	if err != nil {
		log.Error("Failed to load scenario catalog", "path", cfg.ScenariosPath, "error", err)
		os.Exit(1)
	}
	log.Info("Scenario catalog loaded", "count", catalog.Len())

	var sessionStore store.Store
	var broadcaster *events.Broadcaster
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(cfg.RedisURL, log)
		if err != nil {
			log.Error("Failed to create Redis store", "error", err)
			os.Exit(1)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := redisStore.Ping(pingCtx); err != nil {
			cancel()
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		cancel()
		sessionStore = redisStore
		broadcaster = events.NewBroadcaster(redisStore.Client(), log)
		log.Info("Using Redis session store", "url", cfg.RedisURL)
	} else {
		fileStore, err := store.NewFileStore(cfg.SessionsDir, log)
		if err != nil {
			log.Error("Failed to create file store", "dir", cfg.SessionsDir, "error", err)
			os.Exit(1)
		}
		sessionStore = fileStore
		log.Info("Using file session store", "dir", cfg.SessionsDir)
	}

	var host services.HostService
	if cfg.OpenAIAPIKey != "" {
		host = services.NewOpenAIHost(cfg.OpenAIAPIKey, cfg.HostModel, log)
		log.Info("Using OpenAI host persona", "model", cfg.HostModel)
	} else {
		host = services.NewMockHost()
		log.Info("No OpenAI key configured, using canned host lines")
	}

	manager := game.NewManager(catalog, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(sessionStore, log))

	sessionHandler := handlers.NewSessionHandler(manager, sessionStore, host, broadcaster, log, cfg.MaxRounds, cfg.SelectionSeed)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	scenarioHandler := handlers.NewScenarioHandler(catalog, log)
	mux.Handle("/v1/scenarios", scenarioHandler)
	mux.Handle("/v1/scenarios/", scenarioHandler)

	mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(broadcaster, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := sessionStore.Close(); err != nil {
		log.Error("Error closing session store", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
