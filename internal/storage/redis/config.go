package redis

import (
	"time"

	"github.com/mcoot/mankind/internal/storage"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string `mapstructure:"url"`

	// Pool settings
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// DuelTTL expires individual duel results; standings never expire
	DuelTTL time.Duration `mapstructure:"duel_ttl"`

	// RecentLimit bounds the recent-result lists
	RecentLimit int `mapstructure:"recent_limit"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DuelTTL:      7 * 24 * time.Hour,
		RecentLimit:  storage.DefaultRecentLimit,
	}
}
