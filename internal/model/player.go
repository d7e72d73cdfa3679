package model

// PlayerID identifies a player. It is supplied by the client in the connection
// path and trusted as-is.
type PlayerID string

// Level bounds and the XP step between levels
const (
	MinLevel   = 1
	MaxLevel   = 10
	XPPerLevel = 100
)

// Progression is a player's level/XP record for the lifetime of the process
type Progression struct {
	PlayerID    PlayerID
	Level       int // 1..MaxLevel, never decreases
	XP          int // may go negative through penalties
	GamesPlayed int
	GamesWon    int
}

// NewProgression returns the record created on a player's first contact
func NewProgression(id PlayerID) *Progression {
	return &Progression{
		PlayerID: id,
		Level:    MinLevel,
	}
}

// XPForNextLevel returns the XP threshold checked after a duel
func (p *Progression) XPForNextLevel() int {
	return p.Level * XPPerLevel
}

// CanLevelUp reports whether the single-step level-up rule applies
func (p *Progression) CanLevelUp() bool {
	return p.Level < MaxLevel && p.XP >= p.XPForNextLevel()
}
