package scoring

import "time"

// Scoring constants
const (
	BaseScore      = 50
	WrongPenalty   = -25
	bonusPerMinute = 60.0
	levelOffset    = 0.5
	levelDivisor   = 10.0
)

// Service scores duel decisions against a fixed time budget
type Service struct {
	budget time.Duration
}

// New creates a scoring Service for the given duel budget
func New(budget time.Duration) *Service {
	return &Service{budget: budget}
}

// TimeBonus returns the unused budget in seconds, never negative
func (s *Service) TimeBonus(elapsed time.Duration) float64 {
	return TimeBonus(elapsed.Seconds(), s.budget.Seconds())
}

// ScoreDecision scores a decision made after elapsed time at the given level
func (s *Service) ScoreDecision(correct bool, elapsed time.Duration, level int) int {
	return Score(correct, s.TimeBonus(elapsed), level)
}

// TimeBonus returns max(0, budget - elapsed)
func TimeBonus(elapsedSeconds, budgetSeconds float64) float64 {
	bonus := budgetSeconds - elapsedSeconds
	if bonus < 0 {
		return 0
	}
	return bonus
}

// Score computes the points for a decision.
// A correct decision earns 50 scaled up by the time bonus (1x to 3x) and down
// by level; an incorrect one always costs 25. The float operations are
// evaluated in a fixed order so results are reproducible to the point.
func Score(correct bool, timeBonus float64, level int) int {
	if !correct {
		return WrongPenalty
	}
	timeMultiplier := 1 + timeBonus/bonusPerMinute
	levelFactor := 1 / (levelOffset + float64(level)/levelDivisor)
	return int(float64(BaseScore) * timeMultiplier * levelFactor)
}
