package response

import (
	"time"

	"github.com/mcoot/mankind/internal/model"
)

// Health is the response for the health endpoint
type Health struct {
	Status            string `json:"status"`
	ActiveConnections int    `json:"active_connections"`
}

// Progression represents a player's level/XP record
type Progression struct {
	PlayerID       string `json:"player_id"`
	Level          int    `json:"level"`
	XP             int    `json:"xp"`
	XPForNextLevel int    `json:"xp_for_next_level"`
	GamesPlayed    int    `json:"games_played"`
	GamesWon       int    `json:"games_won"`
	BehaviorMode   string `json:"behavior_mode"`
}

// ProgressionFromModel converts model.Progression
func ProgressionFromModel(p *model.Progression) Progression {
	return Progression{
		PlayerID:       string(p.PlayerID),
		Level:          p.Level,
		XP:             p.XP,
		XPForNextLevel: p.XPForNextLevel(),
		GamesPlayed:    p.GamesPlayed,
		GamesWon:       p.GamesWon,
		BehaviorMode:   string(model.BehaviorModeForLevel(p.Level)),
	}
}

// PlayerList is the response for listing known players
type PlayerList struct {
	Players []Progression `json:"players"`
}

// PlayerListFromModel converts a progression snapshot
func PlayerListFromModel(progressions []*model.Progression) PlayerList {
	players := make([]Progression, 0, len(progressions))
	for _, p := range progressions {
		players = append(players, ProgressionFromModel(p))
	}
	return PlayerList{Players: players}
}

// DuelResult represents one scored duel
type DuelResult struct {
	DuelID         string    `json:"duel_id"`
	PlayerID       string    `json:"player_id"`
	Level          int       `json:"level"`
	Mode           string    `json:"mode"`
	Decision       string    `json:"decision"`
	OpponentType   string    `json:"opponent_type"`
	Correct        bool      `json:"correct"`
	Score          int       `json:"score"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	NewLevel       int       `json:"new_level"`
	NewXP          int       `json:"new_xp"`
	LeveledUp      bool      `json:"leveled_up"`
	CompletedAt    time.Time `json:"completed_at"`
}

// DuelResultFromModel converts model.DuelResult
func DuelResultFromModel(r *model.DuelResult) DuelResult {
	return DuelResult{
		DuelID:         string(r.DuelID),
		PlayerID:       string(r.PlayerID),
		Level:          r.Level,
		Mode:           string(r.Mode),
		Decision:       string(r.Decision),
		OpponentType:   string(r.Opponent),
		Correct:        r.Correct,
		Score:          r.Score,
		ElapsedSeconds: r.ElapsedSeconds,
		NewLevel:       r.NewLevel,
		NewXP:          r.NewXP,
		LeveledUp:      r.LeveledUp,
		CompletedAt:    r.CompletedAt,
	}
}

// DuelList wraps a list of duel results
type DuelList struct {
	Duels []DuelResult `json:"duels"`
}

// DuelListFromModel converts a slice of model.DuelResult
func DuelListFromModel(results []*model.DuelResult) DuelList {
	duels := make([]DuelResult, len(results))
	for i, r := range results {
		duels[i] = DuelResultFromModel(r)
	}
	return DuelList{Duels: duels}
}

// Standing is one leaderboard row
type Standing struct {
	Rank        int       `json:"rank"`
	PlayerID    string    `json:"player_id"`
	Level       int       `json:"level"`
	XP          int       `json:"xp"`
	GamesPlayed int       `json:"games_played"`
	GamesWon    int       `json:"games_won"`
	WinRate     float64   `json:"win_rate"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Leaderboard wraps ranked standings
type Leaderboard struct {
	Standings []Standing `json:"standings"`
}

// LeaderboardFromModel ranks standings in the order given, starting at 1
func LeaderboardFromModel(standings []*model.Standing) Leaderboard {
	rows := make([]Standing, len(standings))
	for i, st := range standings {
		rows[i] = Standing{
			Rank:        i + 1,
			PlayerID:    string(st.PlayerID),
			Level:       st.Level,
			XP:          st.XP,
			GamesPlayed: st.GamesPlayed,
			GamesWon:    st.GamesWon,
			WinRate:     st.WinRate(),
			UpdatedAt:   st.UpdatedAt,
		}
	}
	return Leaderboard{Standings: rows}
}
