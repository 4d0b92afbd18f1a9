package session

import (
	"context"
	"time"
)

// UserProgress is the per-user adaptive state, owned exclusively by the
// session engine and mutated only inside the answer-submission path.
// StateVersion is the optimistic-concurrency token exchanged with clients.
type UserProgress struct {
	UserID            string    `json:"user_id"`
	CurrentDifficulty int       `json:"current_difficulty"`
	Streak            int       `json:"streak"`
	MaxStreak         int       `json:"max_streak"`
	TotalScore        int       `json:"total_score"`
	TotalCorrect      int       `json:"total_correct"`
	TotalAnswered     int       `json:"total_answered"`
	LastQuestionID    string    `json:"last_question_id,omitempty"`
	LastAnswerAt      time.Time `json:"last_answer_at"`
	StateVersion      int64     `json:"state_version"`
	RecentCorrect     []bool    `json:"recent_correct"`
}

// Question is immutable content from the question store. The correct answer
// is held only as a one-way hash of its canonicalized form.
type Question struct {
	ID                string
	Difficulty        int
	Prompt            string
	Choices           []string
	CorrectAnswerHash string
	Tags              []string
}

// AnswerLogEntry is the append-only record of one accepted submission. The
// (UserID, IdempotencyKey) pair is unique in the store, which makes replay
// detection durable even when the cache loses the idempotency entry.
type AnswerLogEntry struct {
	UserID         string
	QuestionID     string
	Difficulty     int
	Answer         string
	Correct        bool
	ScoreDelta     int
	StreakBefore   int
	AnsweredAt     time.Time
	IdempotencyKey string
}

// QuestionView is what a client sees when fetching the next question.
type QuestionView struct {
	QuestionID    string   `json:"question_id"`
	Difficulty    int      `json:"difficulty"`
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices"`
	SessionID     string   `json:"session_id"`
	StateVersion  int64    `json:"state_version"`
	CurrentScore  int      `json:"current_score"`
	CurrentStreak int      `json:"current_streak"`
}

// SubmitResult is the outcome of one scored (or replayed) submission.
type SubmitResult struct {
	Correct               bool  `json:"correct"`
	NewDifficulty         int   `json:"new_difficulty"`
	NewStreak             int   `json:"new_streak"`
	ScoreDelta            int   `json:"score_delta"`
	TotalScore            int   `json:"total_score"`
	StateVersion          int64 `json:"state_version"`
	LeaderboardRankScore  int   `json:"leaderboard_rank_score"`
	LeaderboardRankStreak int   `json:"leaderboard_rank_streak"`
}

// RecentAnswer is one row of the recent-performance metrics view.
type RecentAnswer struct {
	Correct    bool      `json:"correct"`
	Difficulty int       `json:"difficulty"`
	AnsweredAt time.Time `json:"answered_at"`
}

// MetricsView aggregates a user's recent activity from the answer log.
type MetricsView struct {
	CurrentDifficulty   int            `json:"current_difficulty"`
	Streak              int            `json:"streak"`
	MaxStreak           int            `json:"max_streak"`
	TotalScore          int            `json:"total_score"`
	Accuracy            float64        `json:"accuracy"`
	DifficultyHistogram map[int]int    `json:"difficulty_histogram"`
	RecentPerformance   []RecentAnswer `json:"recent_performance"`
}

// ProgressStore persists UserProgress with optimistic updates.
type ProgressStore interface {
	Get(ctx context.Context, userID string) (*UserProgress, error)
	Create(ctx context.Context, progress *UserProgress) error
	// Update persists the record only when the stored state version still
	// equals expectedVersion; otherwise it returns ErrVersionConflict.
	Update(ctx context.Context, progress *UserProgress, expectedVersion int64) error
}

// QuestionStore reads immutable question content.
type QuestionStore interface {
	GetByID(ctx context.Context, id string) (*Question, error)
	ListIDsByDifficulty(ctx context.Context, difficulty int) ([]string, error)
	AnyByDifficulty(ctx context.Context, difficulty int) (*Question, error)
}

// AnswerLogStore appends immutable submission records. Append enforces the
// per-user idempotency-key uniqueness and reports ErrDuplicateSubmission.
type AnswerLogStore interface {
	Append(ctx context.Context, entry AnswerLogEntry) error
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*AnswerLogEntry, error)
	RecentByUser(ctx context.Context, userID string, limit int) ([]AnswerLogEntry, error)
}

// LeaderboardProjector upserts the derived score/streak projections and
// answers strictly-greater rank counts.
type LeaderboardProjector interface {
	UpsertScore(ctx context.Context, userID string, totalScore int, at time.Time) error
	UpsertStreak(ctx context.Context, userID string, maxStreak int, at time.Time) error
	CountScoresAbove(ctx context.Context, totalScore int) (int, error)
	CountStreaksAbove(ctx context.Context, maxStreak int) (int, error)
}

// ProgressCache caches UserProgress snapshots, idempotent submission results
// and per-difficulty question-id pools. Implementations must treat a miss and
// an error identically from the caller's perspective: the engine recomputes
// from durable storage either way.
type ProgressCache interface {
	GetProgress(ctx context.Context, userID string) (*UserProgress, error)
	SetProgress(ctx context.Context, userID string, progress *UserProgress) error
	InvalidateProgress(ctx context.Context, userID string) error

	GetSubmission(ctx context.Context, userID, idempotencyKey string) (*SubmitResult, error)
	SetSubmission(ctx context.Context, userID, idempotencyKey string, result SubmitResult) error

	GetQuestionPool(ctx context.Context, difficulty int) ([]string, error)
	SetQuestionPool(ctx context.Context, difficulty int, ids []string) error
	InvalidateQuestionPool(ctx context.Context, difficulty int) error
}
