package adaptive

// Config bounds difficulty movement and the stability window.
type Config struct {
	MinDifficulty        int // default: 1
	MaxDifficulty        int // default: 10
	MinStreakToIncrease  int // default: 2
	ConfidenceWindowSize int // default: 5
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MinDifficulty:        1,
		MaxDifficulty:        10,
		MinStreakToIncrease:  2,
		ConfidenceWindowSize: 5,
	}
}

// Input carries the user's state going into a single answer.
type Input struct {
	Correct           bool
	CurrentDifficulty int
	CurrentStreak     int // streak held before this answer
	RecentCorrect     []bool
}

// Output is the difficulty decision plus the persisted window.
type Output struct {
	NewDifficulty        int
	UpdatedRecentCorrect []bool
}

// Controller decides the next difficulty tier from recent performance.
// It is a pure function of its input; the caller persists the output.
type Controller struct {
	config Config
}

// NewController creates a difficulty controller with the provided config.
func NewController(config Config) *Controller {
	return &Controller{config: config}
}

// Next computes the next difficulty and the updated rolling window.
//
// Difficulty rises by exactly 1 only when all hold: the answer is correct,
// the current tier is below the maximum, the streak held before the answer
// meets MinStreakToIncrease, and a majority of the pre-answer window was
// correct (ceiling division; an empty window trivially passes). Any
// incorrect answer drops difficulty by exactly 1, clamped to the minimum.
func (c *Controller) Next(in Input) Output {
	window := trailing(in.RecentCorrect, c.config.ConfidenceWindowSize)
	updated := trailing(append(window, in.Correct), c.config.ConfidenceWindowSize)

	if !in.Correct {
		next := in.CurrentDifficulty - 1
		if next < c.config.MinDifficulty {
			next = c.config.MinDifficulty
		}
		return Output{NewDifficulty: next, UpdatedRecentCorrect: updated}
	}

	canIncrease := in.CurrentDifficulty < c.config.MaxDifficulty &&
		in.CurrentStreak >= c.config.MinStreakToIncrease
	if canIncrease && majorityCorrect(window) {
		next := in.CurrentDifficulty + 1
		if next > c.config.MaxDifficulty {
			next = c.config.MaxDifficulty
		}
		return Output{NewDifficulty: next, UpdatedRecentCorrect: updated}
	}
	return Output{NewDifficulty: in.CurrentDifficulty, UpdatedRecentCorrect: updated}
}

// Clamp bounds a difficulty value to the configured range.
func (c *Controller) Clamp(difficulty int) int {
	if difficulty < c.config.MinDifficulty {
		return c.config.MinDifficulty
	}
	if difficulty > c.config.MaxDifficulty {
		return c.config.MaxDifficulty
	}
	return difficulty
}

// majorityCorrect reports whether at least half of the window, rounded up,
// is correct. Empty windows pass so new users are not held back.
func majorityCorrect(window []bool) bool {
	if len(window) == 0 {
		return true
	}
	correct := 0
	for _, ok := range window {
		if ok {
			correct++
		}
	}
	return correct >= (len(window)+1)/2
}

// trailing returns a copy of the last n items, never aliasing the input.
func trailing(items []bool, n int) []bool {
	start := 0
	if len(items) > n {
		start = len(items) - n
	}
	out := make([]bool, len(items)-start)
	copy(out, items[start:])
	return out
}
