package storage

import (
	"context"

	"github.com/mcoot/mankind/internal/model"
)

// DefaultRecentLimit bounds the recent-result indexes kept by each backend
const DefaultRecentLimit = 100

// Storage defines the interface for the duel results read model.
// Lists are returned newest first; leaderboard rows by XP descending.
type Storage interface {
	// Duel result operations
	SaveDuelResult(ctx context.Context, result *model.DuelResult) error
	GetDuelResult(ctx context.Context, id model.DuelID) (*model.DuelResult, error)
	GetRecentDuelResults(ctx context.Context, limit int) ([]*model.DuelResult, error)
	GetDuelResultsForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.DuelResult, error)

	// Standing operations
	SaveStanding(ctx context.Context, standing *model.Standing) error
	GetStanding(ctx context.Context, playerID model.PlayerID) (*model.Standing, error)
	GetTopStandings(ctx context.Context, limit int) ([]*model.Standing, error)

	Close() error
}
