package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainbolt/quiz-engine/internal/session"
)

const uniqueViolation = "23505"

// AnswerLogRepository appends immutable submission records. The table's
// unique (user_id, idempotency_key) index is the durable dedup backstop.
type AnswerLogRepository struct {
	pool *pgxpool.Pool
}

var _ session.AnswerLogStore = (*AnswerLogRepository)(nil)

// NewAnswerLogRepository constructs an answer log repository.
func NewAnswerLogRepository(pool *pgxpool.Pool) *AnswerLogRepository {
	return &AnswerLogRepository{pool: pool}
}

// Append inserts one log entry; a duplicate idempotency key surfaces as
// session.ErrDuplicateSubmission.
func (r *AnswerLogRepository) Append(ctx context.Context, entry session.AnswerLogEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answer_log (user_id, question_id, difficulty, answer, correct,
			score_delta, streak_before, answered_at, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.UserID, entry.QuestionID, entry.Difficulty, entry.Answer, entry.Correct,
		entry.ScoreDelta, entry.StreakBefore, entry.AnsweredAt, entry.IdempotencyKey)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return session.ErrDuplicateSubmission
		}
		return fmt.Errorf("insert answer log: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches the entry recorded for a submission key, or nil.
func (r *AnswerLogRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*session.AnswerLogEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, question_id, difficulty, answer, correct, score_delta,
			streak_before, answered_at, idempotency_key
		 FROM answer_log WHERE user_id = $1 AND idempotency_key = $2`, userID, key)

	var e session.AnswerLogEntry
	err := row.Scan(&e.UserID, &e.QuestionID, &e.Difficulty, &e.Answer, &e.Correct,
		&e.ScoreDelta, &e.StreakBefore, &e.AnsweredAt, &e.IdempotencyKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select answer log entry: %w", err)
	}
	return &e, nil
}

// RecentByUser returns the newest entries first, up to limit.
func (r *AnswerLogRepository) RecentByUser(ctx context.Context, userID string, limit int) ([]session.AnswerLogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, question_id, difficulty, answer, correct, score_delta,
			streak_before, answered_at, idempotency_key
		 FROM answer_log WHERE user_id = $1
		 ORDER BY answered_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent answers: %w", err)
	}
	defer rows.Close()

	var entries []session.AnswerLogEntry
	for rows.Next() {
		var e session.AnswerLogEntry
		if err := rows.Scan(&e.UserID, &e.QuestionID, &e.Difficulty, &e.Answer, &e.Correct,
			&e.ScoreDelta, &e.StreakBefore, &e.AnsweredAt, &e.IdempotencyKey); err != nil {
			return nil, fmt.Errorf("scan answer log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
