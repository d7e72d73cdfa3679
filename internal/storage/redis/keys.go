package redis

import (
	"fmt"

	"github.com/mcoot/mankind/internal/model"
)

// Key prefix for all duel-related data
const keyPrefix = "mankind"

// duelKey returns the Redis key for a DuelResult
func duelKey(id model.DuelID) string {
	return fmt.Sprintf("%s:duel:%s", keyPrefix, id)
}

// recentDuelsKey returns the Redis key for the global LIST of recent duel ids
func recentDuelsKey() string {
	return fmt.Sprintf("%s:idx:recent_duels", keyPrefix)
}

// playerDuelsKey returns the Redis key for a player's LIST of recent duel ids
func playerDuelsKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_duels:%s", keyPrefix, playerID)
}

// standingKey returns the Redis key for a player's Standing
func standingKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:standing:%s", keyPrefix, playerID)
}

// leaderboardKey returns the Redis key for the ZSET of players scored by XP
func leaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", keyPrefix)
}
