package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/mankind/internal/config"
	"github.com/mcoot/mankind/internal/dependencies/clock"
	"github.com/mcoot/mankind/internal/dependencies/random"
	"github.com/mcoot/mankind/internal/gateway"
	"github.com/mcoot/mankind/internal/services/duel"
	"github.com/mcoot/mankind/internal/services/progression"
	"github.com/mcoot/mankind/internal/services/registry"
	"github.com/mcoot/mankind/internal/services/responder"
	"github.com/mcoot/mankind/internal/services/results"
	"github.com/mcoot/mankind/internal/sse"
	"github.com/mcoot/mankind/internal/storage"
	"github.com/mcoot/mankind/internal/storage/memory"
	redisstorage "github.com/mcoot/mankind/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Responder responder.Responder

	// Services
	Progression    *progression.Store
	Registry       *registry.Registry
	HubManager     *sse.HubManager
	Results        *results.Service
	DuelController *duel.Controller
	Gateway        *gateway.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Duel, Gateway and Responder fall back to their package defaults when
	// left as zero values
	Duel      duel.Config
	Gateway   gateway.Config
	Responder responder.Config
}

// FromConfig maps loaded application configuration onto a factory Config
func FromConfig(cfg config.Config, logger *slog.Logger) Config {
	fc := Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		Duel:        cfg.Duel,
		Gateway:     cfg.Gateway,
		Responder:   cfg.Responder,
	}
	if cfg.Storage.Type == config.StorageTypeRedis {
		redisCfg := cfg.Storage.Redis
		fc.RedisConfig = &redisCfg
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	resp, err := responder.New(cfg.Responder, rnd, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create responder: %w", err)
	}

	return newWithDependencies(cfg, store, clk, rnd, resp, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	cfg Config,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	resp responder.Responder,
	logger *slog.Logger,
) *App {
	duelCfg := cfg.Duel
	if duelCfg.Duration == 0 {
		duelCfg = duel.DefaultConfig()
	}
	gatewayCfg := cfg.Gateway
	if gatewayCfg.PongWait == 0 {
		gatewayCfg = gateway.DefaultConfig()
	}

	// Create services
	progressionStore := progression.New(logger)
	connRegistry := registry.New(logger)
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)
	resultsService := results.New(store, broadcaster, clk, logger)
	controller := duel.NewController(duelCfg, progressionStore, resp, resultsService, clk, rnd, logger)
	gatewayHandler := gateway.NewHandler(gatewayCfg, connRegistry, progressionStore, controller, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Responder:      resp,
		Progression:    progressionStore,
		Registry:       connRegistry,
		HubManager:     hubManager,
		Results:        resultsService,
		DuelController: controller,
		Gateway:        gatewayHandler,
	}
}

// Close drops every duel connection, ends the live feeds and releases storage
func (a *App) Close() error {
	a.Registry.CloseAll()
	a.HubManager.CloseAll()
	return a.Storage.Close()
}
