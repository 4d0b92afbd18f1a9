package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreDeltaIncorrectIsZero(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	for difficulty := 1; difficulty <= 10; difficulty++ {
		assert.Equal(t, 0, engine.ScoreDelta(false, difficulty, 7))
	}
}

func TestScoreDeltaBaseline(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// difficulty 1, no streak: 100 * 0.6 * 1.0
	assert.Equal(t, 60, engine.ScoreDelta(true, 1, 0))
}

func TestScoreDeltaStreakMultiplier(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	assert.Equal(t, 1.0, engine.StreakMultiplier(0))
	// streak 4: 1 + 4*0.25 = 2.0, below the cap
	assert.Equal(t, 2.0, engine.StreakMultiplier(4))
	// cap reached at streak 8
	assert.Equal(t, 3.0, engine.StreakMultiplier(8))
	assert.Equal(t, 3.0, engine.StreakMultiplier(50))
}

func TestScoreDeltaDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	first := engine.ScoreDelta(true, 6, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.ScoreDelta(true, 6, 3))
	}
	assert.Greater(t, first, 0)
}

func TestScoreDeltaRounding(t *testing.T) {
	engine := NewEngine(Config{
		BasePointsPerCorrect: 100,
		StreakMultiplierStep: 0.25,
		MaxStreakMultiplier:  3.0,
	})

	// difficulty 3, streak 1: 100 * 0.8 * 1.25 = 100
	assert.Equal(t, 100, engine.ScoreDelta(true, 3, 1))
	// difficulty 2, streak 1: 100 * 0.7 * 1.25 = 87.5 -> 88
	assert.Equal(t, 88, engine.ScoreDelta(true, 2, 1))
}
