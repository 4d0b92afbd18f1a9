package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainbolt/quiz-engine/internal/leaderboard"
	"github.com/brainbolt/quiz-engine/internal/session"
)

// LeaderboardRepository maintains the score and streak projections and serves
// both the session engine's rank counts and the ranked top-N reads.
type LeaderboardRepository struct {
	pool *pgxpool.Pool
}

var (
	_ session.LeaderboardProjector = (*LeaderboardRepository)(nil)
	_ leaderboard.Store            = (*LeaderboardRepository)(nil)
)

// NewLeaderboardRepository constructs a leaderboard repository.
func NewLeaderboardRepository(pool *pgxpool.Pool) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool}
}

// UpsertScore writes a user's current total score into the score projection.
func (r *LeaderboardRepository) UpsertScore(ctx context.Context, userID string, totalScore int, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO leaderboard_scores (user_id, total_score, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id)
		 DO UPDATE SET total_score = EXCLUDED.total_score, updated_at = EXCLUDED.updated_at`,
		userID, totalScore, at)
	if err != nil {
		return fmt.Errorf("upsert leaderboard score: %w", err)
	}
	return nil
}

// UpsertStreak writes a user's best streak into the streak projection.
func (r *LeaderboardRepository) UpsertStreak(ctx context.Context, userID string, maxStreak int, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO leaderboard_streaks (user_id, max_streak, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id)
		 DO UPDATE SET max_streak = EXCLUDED.max_streak, updated_at = EXCLUDED.updated_at`,
		userID, maxStreak, at)
	if err != nil {
		return fmt.Errorf("upsert leaderboard streak: %w", err)
	}
	return nil
}

// CountScoresAbove returns how many users hold a strictly greater total score.
func (r *LeaderboardRepository) CountScoresAbove(ctx context.Context, totalScore int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leaderboard_scores WHERE total_score > $1`, totalScore).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count scores above: %w", err)
	}
	return n, nil
}

// CountStreaksAbove returns how many users hold a strictly greater max streak.
func (r *LeaderboardRepository) CountStreaksAbove(ctx context.Context, maxStreak int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leaderboard_streaks WHERE max_streak > $1`, maxStreak).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count streaks above: %w", err)
	}
	return n, nil
}

// TopScores lists the score projection ordered by score descending. Ties are
// broken by earliest update so a long-standing score is not displaced by a
// newcomer matching it.
func (r *LeaderboardRepository) TopScores(ctx context.Context, limit int) ([]leaderboard.ScoreRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, total_score, updated_at FROM leaderboard_scores
		 ORDER BY total_score DESC, updated_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select top scores: %w", err)
	}
	defer rows.Close()

	var out []leaderboard.ScoreRow
	for rows.Next() {
		var row leaderboard.ScoreRow
		if err := rows.Scan(&row.UserID, &row.TotalScore, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopStreaks lists the streak projection ordered by streak descending.
func (r *LeaderboardRepository) TopStreaks(ctx context.Context, limit int) ([]leaderboard.StreakRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, max_streak, updated_at FROM leaderboard_streaks
		 ORDER BY max_streak DESC, updated_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("select top streaks: %w", err)
	}
	defer rows.Close()

	var out []leaderboard.StreakRow
	for rows.Next() {
		var row leaderboard.StreakRow
		if err := rows.Scan(&row.UserID, &row.MaxStreak, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan streak row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
