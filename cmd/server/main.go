// Sales coach server: scenario role-play, scoring, and leaderboard API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcpointlabs/salescoach/internal/api"
	"github.com/arcpointlabs/salescoach/internal/coach"
	"github.com/arcpointlabs/salescoach/internal/config"
	"github.com/arcpointlabs/salescoach/internal/identity"
	"github.com/arcpointlabs/salescoach/internal/llm"
	"github.com/arcpointlabs/salescoach/internal/middleware"
	"github.com/arcpointlabs/salescoach/internal/scenario"
	"github.com/arcpointlabs/salescoach/internal/scoring"
	"github.com/arcpointlabs/salescoach/internal/speech"
	"github.com/arcpointlabs/salescoach/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "policy", cfg.ScoringPolicy)

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Scenario bank: embedded by default, overridable for custom banks.
	var scenarios *scenario.Store
	if cfg.ScenariosPath != "" {
		scenarios, err = scenario.LoadFile(cfg.ScenariosPath)
	} else {
		scenarios, err = scenario.Load()
	}
	if err != nil {
		slog.Error("Failed to load scenario bank", "error", err, "path", cfg.ScenariosPath)
		os.Exit(1)
	}
	slog.Info("Scenario bank loaded", "scenarios", scenarios.Len())

	chatClient := llm.NewOpenAIClient(cfg.ChatBaseURL, cfg.OpenAIAPIKey)
	tts := speech.NewOpenAIClient(cfg.ChatBaseURL, cfg.OpenAIAPIKey, cfg.TTSModel, cfg.TTSVoice)

	var policy scoring.Policy
	switch cfg.ScoringPolicy {
	case config.PolicyLegacy:
		policy = scoring.LegacyPrincipleCount{}
	case config.PolicyJudge:
		policy = scoring.NewJudge(chatClient, cfg.JudgeModel)
	default:
		policy = scoring.RubricPillar{}
	}
	slog.Info("Scoring policy selected", "policy", policy.Name())

	transcriptLogger, err := coach.NewTranscriptLogger(coach.TranscriptLogConfig{
		Enabled:   cfg.TranscriptLog.Enabled,
		Dir:       cfg.TranscriptLog.Dir,
		QueueSize: cfg.TranscriptLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcriptLogger.Close(); closeErr != nil {
			slog.Warn("Failed to close transcript logger", "error", closeErr)
		}
	}()

	svc := coach.NewService(scenarios, chatClient, policy, repo, coach.NewSessionManager(), transcriptLogger, coach.Config{
		Model:       cfg.ChatModel,
		Temperature: cfg.Temperature,
	})

	// Initialize handlers.
	baseHandler := api.NewHandler(svc, repo, tts, cfg)
	healthHandler := api.NewHealthHandler(repo)
	wsHandler := api.NewChatSocketHandler(svc, baseHandler.Limiter(), cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Public routes.
	healthHandler.RegisterHealth(r)

	// All routes use identity middleware (no auth needed).
	baseHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws/chat", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // completions can run long; the client context caps them
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
