package scoring

import "math"

// Config holds configurable scoring constants (defaults match production tuning).
type Config struct {
	BasePointsPerCorrect int     // default: 100
	StreakMultiplierStep float64 // default: 0.25 (+0.25 per streak up to cap)
	MaxStreakMultiplier  float64 // default: 3.0
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BasePointsPerCorrect: 100,
		StreakMultiplierStep: 0.25,
		MaxStreakMultiplier:  3.0,
	}
}

// Engine computes server-side score deltas with configurable constants.
type Engine struct {
	config Config
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// StreakMultiplier returns the bonus multiplier for a given streak, clamped
// to [1, MaxStreakMultiplier].
func (e *Engine) StreakMultiplier(streak int) float64 {
	raw := 1 + float64(streak)*e.config.StreakMultiplierStep
	if raw > e.config.MaxStreakMultiplier {
		return e.config.MaxStreakMultiplier
	}
	if raw < 1 {
		return 1
	}
	return raw
}

// ScoreDelta computes points for a single answer.
// Formula: base * difficulty_weight * streak_multiplier, rounded
// - difficulty_weight: 0.5 + 0.1 per difficulty tier of the question answered
// - streak_multiplier: grows with the streak held before this answer, capped
// Incorrect answers always score zero.
func (e *Engine) ScoreDelta(correct bool, difficulty int, streakBeforeAnswer int) int {
	if !correct {
		return 0
	}
	difficultyWeight := 0.5 + 0.1*float64(difficulty)
	mult := e.StreakMultiplier(streakBeforeAnswer)
	return int(math.Round(float64(e.config.BasePointsPerCorrect) * difficultyWeight * mult))
}
