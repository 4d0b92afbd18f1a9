package leaderboard

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	scores  []ScoreRow
	streaks []StreakRow
	err     error
}

func (s *stubStore) TopScores(_ context.Context, limit int) ([]ScoreRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := append([]ScoreRow(nil), s.scores...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalScore > rows[j].TotalScore })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *stubStore) TopStreaks(_ context.Context, limit int) ([]StreakRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows := append([]StreakRow(nil), s.streaks...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].MaxStreak > rows[j].MaxStreak })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func TestTopByScoreRanksByPosition(t *testing.T) {
	now := time.Now()
	store := &stubStore{scores: []ScoreRow{
		{UserID: "u1", TotalScore: 100, UpdatedAt: now},
		{UserID: "u2", TotalScore: 300, UpdatedAt: now},
		{UserID: "u3", TotalScore: 300, UpdatedAt: now},
		{UserID: "u4", TotalScore: 50, UpdatedAt: now},
	}}
	svc := NewService(store, zerolog.Nop(), ServiceOptions{})

	entries, err := svc.TopByScore(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// ties still get distinct consecutive ranks by list position
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 300, entries[0].Value)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, 300, entries[1].Value)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, 100, entries[2].Value)
	assert.Equal(t, 4, entries[3].Rank)
}

func TestTopByScoreRespectsTopN(t *testing.T) {
	store := &stubStore{}
	for i := 0; i < 150; i++ {
		store.scores = append(store.scores, ScoreRow{UserID: "u", TotalScore: i})
	}
	svc := NewService(store, zerolog.Nop(), ServiceOptions{TopN: 100})

	entries, err := svc.TopByScore(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 100)
}

func TestTopByStreak(t *testing.T) {
	store := &stubStore{streaks: []StreakRow{
		{UserID: "u1", MaxStreak: 3},
		{UserID: "u2", MaxStreak: 9},
	}}
	svc := NewService(store, zerolog.Nop(), ServiceOptions{})

	entries, err := svc.TopByStreak(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, 9, entries[0].Value)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestTopByScorePropagatesStoreError(t *testing.T) {
	svc := NewService(&stubStore{err: errors.New("boom")}, zerolog.Nop(), ServiceOptions{})

	_, err := svc.TopByScore(context.Background())
	assert.Error(t, err)
}
