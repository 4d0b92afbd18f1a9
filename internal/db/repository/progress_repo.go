package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainbolt/quiz-engine/internal/session"
)

// ProgressRepository persists UserProgress in Postgres with optimistic
// concurrency on state_version.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

var _ session.ProgressStore = (*ProgressRepository)(nil)

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

const progressColumns = `user_id, current_difficulty, streak, max_streak, total_score,
	total_correct, total_answered, COALESCE(last_question_id, ''), last_answer_at,
	state_version, recent_correct`

// Get fetches the progress record, or nil when the user has none yet.
func (r *ProgressRepository) Get(ctx context.Context, userID string) (*session.UserProgress, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+progressColumns+` FROM user_progress WHERE user_id = $1`, userID)

	var p session.UserProgress
	err := row.Scan(&p.UserID, &p.CurrentDifficulty, &p.Streak, &p.MaxStreak, &p.TotalScore,
		&p.TotalCorrect, &p.TotalAnswered, &p.LastQuestionID, &p.LastAnswerAt,
		&p.StateVersion, &p.RecentCorrect)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select progress: %w", err)
	}
	return &p, nil
}

// Create inserts the initial progress record for a user.
func (r *ProgressRepository) Create(ctx context.Context, p *session.UserProgress) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_progress (user_id, current_difficulty, streak, max_streak,
			total_score, total_correct, total_answered, last_question_id, last_answer_at,
			state_version, recent_correct)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)`,
		p.UserID, p.CurrentDifficulty, p.Streak, p.MaxStreak, p.TotalScore,
		p.TotalCorrect, p.TotalAnswered, p.LastQuestionID, p.LastAnswerAt,
		p.StateVersion, p.RecentCorrect)
	if err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

// Update persists the record only while the stored state_version still equals
// expectedVersion; a lost race surfaces as session.ErrVersionConflict.
func (r *ProgressRepository) Update(ctx context.Context, p *session.UserProgress, expectedVersion int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_progress SET
			current_difficulty = $2, streak = $3, max_streak = $4, total_score = $5,
			total_correct = $6, total_answered = $7, last_question_id = NULLIF($8, ''),
			last_answer_at = $9, state_version = $10, recent_correct = $11
		 WHERE user_id = $1 AND state_version = $12`,
		p.UserID, p.CurrentDifficulty, p.Streak, p.MaxStreak, p.TotalScore,
		p.TotalCorrect, p.TotalAnswered, p.LastQuestionID, p.LastAnswerAt,
		p.StateVersion, p.RecentCorrect, expectedVersion)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrVersionConflict
	}
	return nil
}
