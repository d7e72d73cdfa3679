package model

import "time"

// DuelResult is the record of one scored duel
type DuelResult struct {
	DuelID         DuelID
	PlayerID       PlayerID
	Level          int
	Mode           BehaviorMode
	Decision       Decision
	Opponent       OpponentType
	Correct        bool
	Score          int
	ElapsedSeconds float64
	NewLevel       int
	NewXP          int
	LeveledUp      bool
	CompletedAt    time.Time
}

// Standing is a player's leaderboard row
type Standing struct {
	PlayerID    PlayerID
	Level       int
	XP          int
	GamesPlayed int
	GamesWon    int
	UpdatedAt   time.Time
}

// NewStanding snapshots a progression record
func NewStanding(p *Progression, at time.Time) *Standing {
	return &Standing{
		PlayerID:    p.PlayerID,
		Level:       p.Level,
		XP:          p.XP,
		GamesPlayed: p.GamesPlayed,
		GamesWon:    p.GamesWon,
		UpdatedAt:   at,
	}
}

// WinRate returns won/played, or 0 before the first duel
func (s *Standing) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.GamesWon) / float64(s.GamesPlayed)
}
