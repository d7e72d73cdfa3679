package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/mankind/internal/model"
	"github.com/mcoot/mankind/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	results     map[model.DuelID]*model.DuelResult
	recent      []model.DuelID // newest last
	playerDuels map[model.PlayerID][]model.DuelID
	standings   map[model.PlayerID]*model.Standing
	recentLimit int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return NewWithLimit(storage.DefaultRecentLimit)
}

// NewWithLimit creates an in-memory storage keeping at most limit results
// in each recent index
func NewWithLimit(limit int) *Storage {
	if limit <= 0 {
		limit = storage.DefaultRecentLimit
	}
	return &Storage{
		results:     make(map[model.DuelID]*model.DuelResult),
		playerDuels: make(map[model.PlayerID][]model.DuelID),
		standings:   make(map[model.PlayerID]*model.Standing),
		recentLimit: limit,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory backend
func (s *Storage) Close() error {
	return nil
}

// Duel result operations

func (s *Storage) SaveDuelResult(ctx context.Context, result *model.DuelResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *result
	if _, exists := s.results[result.DuelID]; !exists {
		s.recent = s.pushBounded(s.recent, result.DuelID)
		s.playerDuels[result.PlayerID] = s.pushBounded(s.playerDuels[result.PlayerID], result.DuelID)
	}
	s.results[result.DuelID] = &cp
	s.evict()
	return nil
}

func (s *Storage) GetDuelResult(ctx context.Context, id model.DuelID) (*model.DuelResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, model.ErrDuelNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Storage) GetRecentDuelResults(ctx context.Context, limit int) ([]*model.DuelResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.recent, limit), nil
}

func (s *Storage) GetDuelResultsForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.DuelResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.playerDuels[playerID], limit), nil
}

// Standing operations

func (s *Storage) SaveStanding(ctx context.Context, standing *model.Standing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *standing
	s.standings[standing.PlayerID] = &cp
	return nil
}

func (s *Storage) GetStanding(ctx context.Context, playerID model.PlayerID) (*model.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.standings[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *Storage) GetTopStandings(ctx context.Context, limit int) ([]*model.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Standing, 0, len(s.standings))
	for _, st := range s.standings {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// pushBounded appends id and drops the oldest entries beyond the limit
func (s *Storage) pushBounded(ids []model.DuelID, id model.DuelID) []model.DuelID {
	ids = append(ids, id)
	if len(ids) > s.recentLimit {
		ids = ids[len(ids)-s.recentLimit:]
	}
	return ids
}

// evict drops results no longer referenced by any index. Caller holds the lock.
func (s *Storage) evict() {
	if len(s.results) <= s.recentLimit {
		return
	}
	live := make(map[model.DuelID]struct{}, len(s.results))
	for _, id := range s.recent {
		live[id] = struct{}{}
	}
	for _, ids := range s.playerDuels {
		for _, id := range ids {
			live[id] = struct{}{}
		}
	}
	for id := range s.results {
		if _, ok := live[id]; !ok {
			delete(s.results, id)
		}
	}
}

// collect returns copies of the newest results in ids. Caller holds the lock.
func (s *Storage) collect(ids []model.DuelID, limit int) []*model.DuelResult {
	out := make([]*model.DuelResult, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		r, ok := s.results[ids[i]]
		if !ok {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out
}
