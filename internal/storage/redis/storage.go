package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/mankind/internal/model"
	"github.com/mcoot/mankind/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = storage.DefaultRecentLimit
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Duel result operations

func (s *Storage) SaveDuelResult(ctx context.Context, result *model.DuelResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	trim := int64(s.cfg.RecentLimit - 1)
	id := string(result.DuelID)

	// Use pipeline for atomic save + index updates
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, duelKey(result.DuelID), data, s.cfg.DuelTTL)
	pipe.LPush(ctx, recentDuelsKey(), id)
	pipe.LTrim(ctx, recentDuelsKey(), 0, trim)
	pipe.LPush(ctx, playerDuelsKey(result.PlayerID), id)
	pipe.LTrim(ctx, playerDuelsKey(result.PlayerID), 0, trim)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetDuelResult(ctx context.Context, id model.DuelID) (*model.DuelResult, error) {
	data, err := s.client.Get(ctx, duelKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrDuelNotFound
		}
		return nil, err
	}

	var result model.DuelResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *Storage) GetRecentDuelResults(ctx context.Context, limit int) ([]*model.DuelResult, error) {
	return s.resultsFromIndex(ctx, recentDuelsKey(), limit)
}

func (s *Storage) GetDuelResultsForPlayer(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.DuelResult, error) {
	return s.resultsFromIndex(ctx, playerDuelsKey(playerID), limit)
}

// resultsFromIndex loads the results named by a recent-id list, skipping
// entries whose payload has expired
func (s *Storage) resultsFromIndex(ctx context.Context, indexKey string, limit int) ([]*model.DuelResult, error) {
	ids, err := s.client.LRange(ctx, indexKey, 0, stop(limit)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.DuelResult{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = duelKey(model.DuelID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*model.DuelResult, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var result model.DuelResult
		if err := json.Unmarshal([]byte(str), &result); err != nil {
			return nil, err
		}
		results = append(results, &result)
	}
	return results, nil
}

// Standing operations

func (s *Storage) SaveStanding(ctx context.Context, standing *model.Standing) error {
	data, err := json.Marshal(standing)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, standingKey(standing.PlayerID), data, 0) // No TTL
	pipe.ZAdd(ctx, leaderboardKey(), redis.Z{
		Score:  float64(standing.XP),
		Member: string(standing.PlayerID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetStanding(ctx context.Context, playerID model.PlayerID) (*model.Standing, error) {
	data, err := s.client.Get(ctx, standingKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var standing model.Standing
	if err := json.Unmarshal(data, &standing); err != nil {
		return nil, err
	}
	return &standing, nil
}

func (s *Storage) GetTopStandings(ctx context.Context, limit int) ([]*model.Standing, error) {
	members, err := s.client.ZRevRange(ctx, leaderboardKey(), 0, stop(limit)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []*model.Standing{}, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = standingKey(model.PlayerID(m))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]*model.Standing, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var standing model.Standing
		if err := json.Unmarshal([]byte(str), &standing); err != nil {
			return nil, err
		}
		standings = append(standings, &standing)
	}
	return standings, nil
}

// stop converts a limit into an inclusive range end; 0 or less means all
func stop(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit - 1)
}
