package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainbolt/quiz-engine/internal/session"
)

// QuestionRepository reads (and, for the seeder, writes) immutable question
// content.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

var _ session.QuestionStore = (*QuestionRepository)(nil)

// NewQuestionRepository constructs a question repository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `question_id, difficulty, prompt, choices, correct_answer_hash, tags`

func scanQuestion(row pgx.Row) (*session.Question, error) {
	var q session.Question
	err := row.Scan(&q.ID, &q.Difficulty, &q.Prompt, &q.Choices, &q.CorrectAnswerHash, &q.Tags)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan question: %w", err)
	}
	return &q, nil
}

// GetByID fetches one question, or nil when the id is unknown.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*session.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question_id = $1`, id))
}

// ListIDsByDifficulty returns every question id at the given tier.
func (r *QuestionRepository) ListIDsByDifficulty(ctx context.Context, difficulty int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM questions WHERE difficulty = $1`, difficulty)
	if err != nil {
		return nil, fmt.Errorf("select question ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AnyByDifficulty returns an arbitrary question at the given tier, or nil.
func (r *QuestionRepository) AnyByDifficulty(ctx context.Context, difficulty int) (*session.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE difficulty = $1 LIMIT 1`, difficulty))
}

// Insert stores a question; used by the seeder only.
func (r *QuestionRepository) Insert(ctx context.Context, q session.Question) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO questions (question_id, difficulty, prompt, choices, correct_answer_hash, tags)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (question_id) DO NOTHING`,
		q.ID, q.Difficulty, q.Prompt, q.Choices, q.CorrectAnswerHash, q.Tags)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}
