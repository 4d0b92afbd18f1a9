package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ScoreRow is one persisted row of the score projection.
type ScoreRow struct {
	UserID     string
	TotalScore int
	UpdatedAt  time.Time
}

// StreakRow is one persisted row of the streak projection.
type StreakRow struct {
	UserID    string
	MaxStreak int
	UpdatedAt time.Time
}

// Store reads the two leaderboard projections ordered by value descending.
type Store interface {
	TopScores(ctx context.Context, limit int) ([]ScoreRow, error)
	TopStreaks(ctx context.Context, limit int) ([]StreakRow, error)
}

// Entry is a ranked leaderboard record sent to clients. Rank is the 1-based
// position in the returned list: equal values still get distinct consecutive
// ranks, unlike the strictly-greater personal rank computed at submission.
type Entry struct {
	Rank      int       `json:"rank"`
	UserID    string    `json:"user_id"`
	Value     int       `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceOptions configures ranked-list queries.
type ServiceOptions struct {
	TopN int
}

// Service answers top-N queries over the score and streak projections.
type Service struct {
	store  Store
	logger zerolog.Logger
	topN   int
}

// NewService constructs a leaderboard service instance.
func NewService(store Store, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 100
	}
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "leaderboard").Logger(),
		topN:   topN,
	}
}

// TopByScore returns the highest totalScore holders, rank by list position.
func (s *Service) TopByScore(ctx context.Context) ([]Entry, error) {
	rows, err := s.store.TopScores(ctx, s.topN)
	if err != nil {
		return nil, fmt.Errorf("fetch score leaderboard: %w", err)
	}
	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{
			Rank:      i + 1,
			UserID:    row.UserID,
			Value:     row.TotalScore,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return entries, nil
}

// TopByStreak returns the highest maxStreak holders, rank by list position.
func (s *Service) TopByStreak(ctx context.Context) ([]Entry, error) {
	rows, err := s.store.TopStreaks(ctx, s.topN)
	if err != nil {
		return nil, fmt.Errorf("fetch streak leaderboard: %w", err)
	}
	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{
			Rank:      i + 1,
			UserID:    row.UserID,
			Value:     row.MaxStreak,
			UpdatedAt: row.UpdatedAt,
		}
	}
	return entries, nil
}
