package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/config"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/database"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/handlers"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/llm"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/repository"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/router"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/services"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
	logger.Info().Msg("starting vibe coding backend")

	// ──── Step 2: Open the Store ────
	var (
		projectRepo repository.ProjectStore
		messageRepo repository.MessageStore
		ping        func(ctx context.Context) error
	)
	if database.IsSQLiteURL(cfg.DatabaseURL) {
		db, err := database.NewSQLiteDB(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		defer db.Close()
		projectRepo = repository.NewSQLiteProjectRepo(db)
		messageRepo = repository.NewSQLiteMessageRepo(db)
		ping = db.PingContext
		logger.Info().Msg("sqlite ready")
	} else {
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pool.Close()
		logger.Info().Msg("connected to PostgreSQL")

		if err := database.RunMigrations(pool, logger); err != nil {
			logger.Fatal().Err(err).Msg("database migration failed")
		}
		projectRepo = repository.NewProjectRepo(pool)
		messageRepo = repository.NewMessageRepo(pool)
		ping = pool.Ping
	}

	// ──── Step 3: Optional Redis ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis, live updates enabled")
	}

	// ──── Step 4: Model Client ────
	ollama, err := llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid Ollama configuration")
	}

	// ──── Services & Handlers ────
	events := services.NewEventPublisher(redisClient, logger)
	chatService := services.NewChatService(projectRepo, messageRepo, ollama, services.ModelNames{
		CodeGen: cfg.CodeGenModel,
		Analyze: cfg.AnalyzeModel,
		Summary: cfg.SummaryModel,
	}, events, logger)

	wsHub := websocket.NewHub(redisClient, projectRepo, cfg.FrontendURL, logger)
	defer wsHub.Close()

	r := router.New(
		handlers.NewProjectHandler(projectRepo, messageRepo, logger),
		handlers.NewChatHandler(chatService, logger),
		handlers.NewHealthHandler(ping),
		wsHub,
		cfg.FrontendURL,
		cfg.DefaultUserID(),
		logger,
	)

	// A generate-and-analyze turn makes two sequential model calls.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.OllamaTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info().Msg("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("ollama", cfg.OllamaBaseURL).
		Str("code_model", cfg.CodeGenModel).
		Str("analyze_model", cfg.AnalyzeModel).
		Str("summary_model", cfg.SummaryModel).
		Msg("server ready")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}
