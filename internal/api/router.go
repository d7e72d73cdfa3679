package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mankind/internal/api/handler"
	"github.com/mcoot/mankind/internal/api/middleware"
	"github.com/mcoot/mankind/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Progression handler.ProgressionReader
	Results     handler.ResultsReader
	Connections handler.ConnectionCounter
	HubManager  *sse.HubManager
	// Gateway serves /ws/{player_id}; the route is omitted when nil
	Gateway     http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Connections)
	playerHandler := handler.NewPlayerHandler(cfg.Progression, cfg.Results)
	duelHandler := handler.NewDuelHandler(cfg.Results)
	eventsHandler := handler.NewEventsHandler(cfg.HubManager)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Player routes
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	players := api.PathPrefix("/players/{player_id}").Subrouter()
	players.HandleFunc("/progression", playerHandler.GetProgression).Methods(http.MethodGet)
	players.HandleFunc("/duels", playerHandler.ListDuels).Methods(http.MethodGet)
	players.HandleFunc("/events", eventsHandler.Player).Methods(http.MethodGet)

	// Duel and leaderboard routes; /recent is registered before /{duel_id}
	api.HandleFunc("/duels/recent", duelHandler.Recent).Methods(http.MethodGet)
	api.HandleFunc("/duels/{duel_id}", duelHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", duelHandler.Leaderboard).Methods(http.MethodGet)

	// Global live feed
	api.HandleFunc("/events", eventsHandler.Global).Methods(http.MethodGet)

	// Duel websocket; the session outlives the request so only logging
	// middleware wraps the upgrade
	if cfg.Gateway != nil {
		ws := r.PathPrefix("/ws").Subrouter()
		ws.Use(loggingMiddleware)
		ws.Handle("/{player_id}", cfg.Gateway).Methods(http.MethodGet)
	}

	return r
}
