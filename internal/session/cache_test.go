package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(client, CacheTTLs{
		Progress:     time.Minute,
		Idempotency:  time.Hour,
		QuestionPool: time.Minute,
	}), mr
}

func TestCacheProgressRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	missing, err := cache.GetProgress(ctx, "u1")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	progress := &UserProgress{
		UserID:            "u1",
		CurrentDifficulty: 4,
		Streak:            2,
		TotalScore:        310,
		StateVersion:      7,
		RecentCorrect:     []bool{true, false, true},
	}
	require.NoError(t, cache.SetProgress(ctx, "u1", progress))
	assert.True(t, mr.Exists("brainbolt:user_state:u1"))

	got, err := cache.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, progress, got)

	require.NoError(t, cache.InvalidateProgress(ctx, "u1"))
	assert.False(t, mr.Exists("brainbolt:user_state:u1"))
}

func TestCacheSubmissionScopedPerUser(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	result := SubmitResult{Correct: true, ScoreDelta: 60, TotalScore: 60, StateVersion: 1}
	require.NoError(t, cache.SetSubmission(ctx, "u1", "q1:a:0", result))

	got, err := cache.GetSubmission(ctx, "u1", "q1:a:0")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, result, *got)

	// Another user with the same key must not see the entry.
	other, err := cache.GetSubmission(ctx, "u2", "q1:a:0")
	assert.NoError(t, err)
	assert.Nil(t, other)
}

func TestCacheSubmissionExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetSubmission(ctx, "u1", "k", SubmitResult{Correct: true}))
	mr.FastForward(2 * time.Hour)

	got, err := cache.GetSubmission(ctx, "u1", "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheQuestionPoolRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	ids := []string{"q1", "q2", "q3"}
	require.NoError(t, cache.SetQuestionPool(ctx, 3, ids))
	assert.True(t, mr.Exists("brainbolt:question_pool:3"))

	got, err := cache.GetQuestionPool(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, ids, got)

	// Pools are per difficulty.
	empty, err := cache.GetQuestionPool(ctx, 4)
	assert.NoError(t, err)
	assert.Nil(t, empty)

	require.NoError(t, cache.InvalidateQuestionPool(ctx, 3))
	assert.False(t, mr.Exists("brainbolt:question_pool:3"))
}
