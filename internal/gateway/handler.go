package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mcoot/mankind/internal/api/apierr"
	"github.com/mcoot/mankind/internal/model"
	"github.com/mcoot/mankind/internal/services/duel"
	"github.com/mcoot/mankind/internal/services/registry"
)

// Config holds websocket transport settings
type Config struct {
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"` // must be shorter than PongWait
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	InboundBuffer  int           `mapstructure:"inbound_buffer"`
}

// DefaultConfig returns the standard transport settings
func DefaultConfig() Config {
	return Config{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 4096,
		SendBuffer:     32,
		InboundBuffer:  16,
	}
}

// SessionRunner drives the duel protocol over one connection
type SessionRunner interface {
	Run(ctx context.Context, playerID model.PlayerID, inbound <-chan []byte, out duel.Sender) error
}

// ProgressionStore ensures a player has a progression record
type ProgressionStore interface {
	GetOrCreate(ctx context.Context, id model.PlayerID) (*model.Progression, error)
}

// Handler upgrades /ws/{player_id} requests and runs a duel session on each
type Handler struct {
	cfg         Config
	upgrader    websocket.Upgrader
	registry    *registry.Registry
	progression ProgressionStore
	sessions    SessionRunner
	logger      *slog.Logger
}

// NewHandler creates a gateway Handler
func NewHandler(cfg Config, reg *registry.Registry, progression ProgressionStore, sessions SessionRunner, logger *slog.Logger) *Handler {
	return &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		registry:    reg,
		progression: progression,
		sessions:    sessions,
		logger:      logger.With(slog.String("component", "gateway")),
	}
}

// ServeHTTP handles GET /ws/{player_id}
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(strings.TrimSpace(mux.Vars(r)["player_id"]))
	if playerID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("player_id is required"))
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		h.logger.Warn("websocket upgrade failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		return
	}

	logger := h.logger.With(slog.String("player_id", string(playerID)))
	logger.Info("websocket connected", slog.String("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newConn(ws, h.cfg, cancel, logger)
	lease := h.registry.Register(playerID, c)
	defer func() {
		h.registry.Release(lease)
		_ = c.Close()
		<-c.writerDone
		logger.Info("websocket disconnected")
	}()

	go c.writePump()
	go c.readPump()

	if _, err := h.progression.GetOrCreate(ctx, playerID); err != nil {
		logger.Error("failed to load progression", slog.String("error", err.Error()))
		return
	}

	if err := h.runSession(ctx, playerID, c); err != nil {
		logger.Warn("session ended with error", slog.String("error", err.Error()))
	}
}

// runSession runs the session and converts a panic into an error so it never
// reaches the HTTP server
func (h *Handler) runSession(ctx context.Context, playerID model.PlayerID, c *conn) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic in duel session",
				slog.String("player_id", string(playerID)),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			err = errors.New("session panicked")
		}
	}()

	err = h.sessions.Run(ctx, playerID, c.inbound, c)
	if errors.Is(err, ErrConnClosed) {
		return nil
	}
	return err
}
