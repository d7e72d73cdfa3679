package progression

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/mankind/internal/model"
)

// Store holds every player's progression in memory. Records live for the
// lifetime of the process.
type Store struct {
	mu      sync.Mutex
	players map[model.PlayerID]*model.Progression
	logger  *slog.Logger
}

// New creates an empty Store
func New(logger *slog.Logger) *Store {
	return &Store{
		players: make(map[model.PlayerID]*model.Progression),
		logger:  logger.With(slog.String("component", "progression")),
	}
}

// GetOrCreate returns a copy of the player's record, creating the default
// record on first contact
func (s *Store) GetOrCreate(ctx context.Context, id model.PlayerID) (*model.Progression, error) {
	if id == "" {
		return nil, model.ErrInvalidPlayerID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		p = model.NewProgression(id)
		s.players[id] = p
		s.logger.Debug("progression created", slog.String("player_id", string(id)))
	}
	cp := *p
	return &cp, nil
}

// Get returns a copy of an existing record
func (s *Store) Get(ctx context.Context, id model.PlayerID) (*model.Progression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

// ApplyResult records one scored duel: games played and won, XP, and at most
// one level step. XP is not re-checked after the step, so a large score can
// leave a player below the level their XP would allow.
func (s *Store) ApplyResult(ctx context.Context, id model.PlayerID, correct bool, score int) (*model.Progression, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, false, fmt.Errorf("apply result: %w", model.ErrPlayerNotFound)
	}

	p.GamesPlayed++
	if correct {
		p.GamesWon++
	}
	p.XP += score

	leveledUp := false
	if p.CanLevelUp() {
		p.Level++
		leveledUp = true
		s.logger.Info("player leveled up",
			slog.String("player_id", string(id)),
			slog.Int("level", p.Level),
			slog.Int("xp", p.XP))
	}

	cp := *p
	return &cp, leveledUp, nil
}

// List returns copies of all records ordered by player id
func (s *Store) List(ctx context.Context) []*model.Progression {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Progression, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
