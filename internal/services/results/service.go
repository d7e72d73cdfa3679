package results

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/mankind/internal/dependencies/clock"
	"github.com/mcoot/mankind/internal/model"
	"github.com/mcoot/mankind/internal/storage"
)

// Limits applied to list queries
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Publisher pushes scored duels to live subscribers
type Publisher interface {
	BroadcastDuelResult(result *model.DuelResult)
}

// Service records duel results and serves the leaderboard read model
type Service struct {
	storage   storage.Storage
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a results Service. publisher may be nil.
func New(store storage.Storage, publisher Publisher, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage:   store,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With(slog.String("component", "results")),
	}
}

// Record stores a scored duel, updates the player's standing and publishes
// the result
func (s *Service) Record(ctx context.Context, result *model.DuelResult, progression *model.Progression) error {
	if err := s.storage.SaveDuelResult(ctx, result); err != nil {
		return fmt.Errorf("save duel result: %w", err)
	}
	if err := s.storage.SaveStanding(ctx, model.NewStanding(progression, s.clock.Now())); err != nil {
		return fmt.Errorf("save standing: %w", err)
	}

	s.logger.Debug("duel result recorded",
		slog.String("duel_id", string(result.DuelID)),
		slog.String("player_id", string(result.PlayerID)),
		slog.Int("score", result.Score))

	if s.publisher != nil {
		s.publisher.BroadcastDuelResult(result)
	}
	return nil
}

// Get returns a single duel result
func (s *Service) Get(ctx context.Context, id model.DuelID) (*model.DuelResult, error) {
	return s.storage.GetDuelResult(ctx, id)
}

// Leaderboard returns the top standings by XP
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*model.Standing, error) {
	return s.storage.GetTopStandings(ctx, ClampLimit(limit))
}

// Recent returns the most recent results across all players
func (s *Service) Recent(ctx context.Context, limit int) ([]*model.DuelResult, error) {
	return s.storage.GetRecentDuelResults(ctx, ClampLimit(limit))
}

// ForPlayer returns a player's most recent results
func (s *Service) ForPlayer(ctx context.Context, id model.PlayerID, limit int) ([]*model.DuelResult, error) {
	return s.storage.GetDuelResultsForPlayer(ctx, id, ClampLimit(limit))
}

// ClampLimit maps a requested list size into [1, MaxLimit]; 0 or less
// selects DefaultLimit
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
