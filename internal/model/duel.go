package model

import (
	"math"
	"time"
)

// DuelID uniquely identifies a single duel
type DuelID string

// BehaviorMode controls the opponent's response style
type BehaviorMode string

const (
	ModeNormal    BehaviorMode = "normal"
	ModeHumanLike BehaviorMode = "human-like"
	ModeDeceptive BehaviorMode = "deceptive"
)

// Level thresholds for the opponent behavior modes
const (
	humanLikeFromLevel = 5
	deceptiveFromLevel = 8
)

// BehaviorModeForLevel derives the opponent mode from the player's level
func BehaviorModeForLevel(level int) BehaviorMode {
	switch {
	case level >= deceptiveFromLevel:
		return ModeDeceptive
	case level >= humanLikeFromLevel:
		return ModeHumanLike
	default:
		return ModeNormal
	}
}

// OpponentType is the true nature of the opponent
type OpponentType string

const (
	OpponentAI    OpponentType = "ai"
	OpponentHuman OpponentType = "human"
)

// Decision is the player's judgment of the opponent
type Decision string

const (
	DecisionHuman Decision = "human"
	DecisionAI    Decision = "ai"
)

// Valid reports whether the decision names an opponent type
func (d Decision) Valid() bool {
	return d == DecisionHuman || d == DecisionAI
}

// DuelState represents the lifecycle phase of a duel
type DuelState string

const (
	DuelStateStarting DuelState = "starting"
	DuelStateActive   DuelState = "active"   // chatting, decision allowed
	DuelStateTimeUp   DuelState = "time_up"  // budget spent, one decision still accepted
	DuelStateFinished DuelState = "finished" // terminal
)

// Duel is one timed session between a player and an opponent
type Duel struct {
	ID        DuelID
	PlayerID  PlayerID
	Level     int // player's level when the duel started
	Mode      BehaviorMode
	Opponent  OpponentType
	State     DuelState
	StartedAt time.Time
	Deadline  time.Time
}

// Remaining returns the time left before the deadline (may be negative)
func (d *Duel) Remaining(now time.Time) time.Duration {
	return d.Deadline.Sub(now)
}

// Elapsed returns the time since the duel started
func (d *Duel) Elapsed(now time.Time) time.Duration {
	return now.Sub(d.StartedAt)
}

// Expired reports whether the time budget is spent
func (d *Duel) Expired(now time.Time) bool {
	return d.Remaining(now) <= 0
}

// TimeRemainingSeconds is the wire value of time_remaining: whole seconds,
// rounded, never negative
func (d *Duel) TimeRemainingSeconds(now time.Time) int {
	secs := int(math.Round(d.Remaining(now).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

// IsCorrect compares a decision against the stored opponent type.
// Anything other than "human" or "ai" is never correct.
func (d *Duel) IsCorrect(decision Decision) bool {
	return decision.Valid() && string(decision) == string(d.Opponent)
}

// AcceptsDecision reports whether a decision event is processed in the current state
func (d *Duel) AcceptsDecision() bool {
	return d.State == DuelStateActive || d.State == DuelStateTimeUp
}
