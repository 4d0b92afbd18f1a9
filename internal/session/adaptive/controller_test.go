package adaptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncreaseRequiresStreakAndMajority(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	out := ctrl.Next(Input{
		Correct:           true,
		CurrentDifficulty: 5,
		CurrentStreak:     3,
		RecentCorrect:     []bool{true, true, false, true},
	})
	assert.Equal(t, 6, out.NewDifficulty)
	assert.Equal(t, []bool{true, true, false, true, true}, out.UpdatedRecentCorrect)
}

func TestNoIncreaseBelowMinStreak(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	out := ctrl.Next(Input{
		Correct:           true,
		CurrentDifficulty: 5,
		CurrentStreak:     1,
		RecentCorrect:     []bool{true, true, true, true, true},
	})
	assert.Equal(t, 5, out.NewDifficulty)
}

func TestNoIncreaseWithoutWindowMajority(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	// 2 of 5 correct: below ceil(5/2)=3
	out := ctrl.Next(Input{
		Correct:           true,
		CurrentDifficulty: 4,
		CurrentStreak:     3,
		RecentCorrect:     []bool{false, false, false, true, true},
	})
	assert.Equal(t, 4, out.NewDifficulty)
}

func TestEmptyWindowPasses(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	out := ctrl.Next(Input{
		Correct:           true,
		CurrentDifficulty: 2,
		CurrentStreak:     2,
		RecentCorrect:     nil,
	})
	assert.Equal(t, 3, out.NewDifficulty)
	assert.Equal(t, []bool{true}, out.UpdatedRecentCorrect)
}

func TestIncorrectAlwaysDecreases(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	out := ctrl.Next(Input{
		Correct:           false,
		CurrentDifficulty: 3,
		CurrentStreak:     9,
		RecentCorrect:     []bool{true, true, true, true, true},
	})
	assert.Equal(t, 2, out.NewDifficulty)
	assert.Equal(t, []bool{true, true, true, true, false}, out.UpdatedRecentCorrect)
}

func TestBoundsClamped(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	atMin := ctrl.Next(Input{Correct: false, CurrentDifficulty: 1, CurrentStreak: 0})
	assert.Equal(t, 1, atMin.NewDifficulty)

	atMax := ctrl.Next(Input{
		Correct:           true,
		CurrentDifficulty: 10,
		CurrentStreak:     5,
		RecentCorrect:     []bool{true, true, true},
	})
	assert.Equal(t, 10, atMax.NewDifficulty)
}

func TestWindowEvictsOldestFirst(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	out := ctrl.Next(Input{
		Correct:           true,
		CurrentDifficulty: 1,
		CurrentStreak:     0,
		RecentCorrect:     []bool{false, true, true, true, true},
	})
	// window is full: the oldest entry falls off when the new outcome lands
	assert.Equal(t, []bool{true, true, true, true, true}, out.UpdatedRecentCorrect)
	assert.Len(t, out.UpdatedRecentCorrect, 5)
}

func TestMovesByAtMostOne(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	for difficulty := 1; difficulty <= 10; difficulty++ {
		for _, correct := range []bool{true, false} {
			out := ctrl.Next(Input{
				Correct:           correct,
				CurrentDifficulty: difficulty,
				CurrentStreak:     4,
				RecentCorrect:     []bool{true, true, true, true, true},
			})
			diff := out.NewDifficulty - difficulty
			assert.LessOrEqual(t, diff, 1)
			assert.GreaterOrEqual(t, diff, -1)
			assert.GreaterOrEqual(t, out.NewDifficulty, 1)
			assert.LessOrEqual(t, out.NewDifficulty, 10)
		}
	}
}

func TestClamp(t *testing.T) {
	ctrl := NewController(DefaultConfig())

	assert.Equal(t, 1, ctrl.Clamp(-3))
	assert.Equal(t, 7, ctrl.Clamp(7))
	assert.Equal(t, 10, ctrl.Clamp(42))
}
