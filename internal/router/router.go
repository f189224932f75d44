package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Hydarhafiz/vibe-coding-ai/internal/handlers"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/middleware"
	"github.com/Hydarhafiz/vibe-coding-ai/internal/websocket"
)

func New(
	projectHandler *handlers.ProjectHandler,
	chatHandler *handlers.ChatHandler,
	healthHandler *handlers.HealthHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	defaultUserID string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.DefaultUser(defaultUserID))

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ──── Project Routes ────
	r.Route("/projects", func(r chi.Router) {
		r.Post("/", projectHandler.Create)
		r.Get("/", projectHandler.List)
		r.Get("/{id}", projectHandler.Get)
		r.Delete("/{id}", projectHandler.Delete)
		r.Get("/{id}/messages", projectHandler.ListMessages)
		r.Get("/{id}/ws", wsHub.HandleWebSocket)
	})

	// ──── Chat Routes ────
	r.Post("/chat", chatHandler.Chat)

	return r
}
