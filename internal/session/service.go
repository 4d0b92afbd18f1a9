package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brainbolt/quiz-engine/internal/session/adaptive"
	"github.com/brainbolt/quiz-engine/internal/session/scoring"
)

const (
	metricsLogWindow    = 20
	recentPerformanceN  = 10
	submitRetryAttempts = 3
)

// ServiceOptions configures session engine behavior.
type ServiceOptions struct {
	MinDifficulty    int           // difficulty assigned to new users
	StreakDecayAfter time.Duration // inactivity after which the streak resets
}

// Service orchestrates question selection, answer scoring, idempotent replay
// and leaderboard projection updates. All collaborators are injected so tests
// can run against in-memory doubles.
type Service struct {
	progress  ProgressStore
	questions QuestionStore
	log       AnswerLogStore
	boards    LeaderboardProjector
	cache     ProgressCache
	scoring   *scoring.Engine
	adaptive  *adaptive.Controller
	opts      ServiceOptions
	logger    zerolog.Logger
	locks     *userLocks

	now     func() time.Time
	pickIdx func(n int) int
}

// NewService constructs the session engine.
func NewService(
	progress ProgressStore,
	questions QuestionStore,
	log AnswerLogStore,
	boards LeaderboardProjector,
	cache ProgressCache,
	scoringEngine *scoring.Engine,
	controller *adaptive.Controller,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	if opts.MinDifficulty <= 0 {
		opts.MinDifficulty = 1
	}
	if opts.StreakDecayAfter <= 0 {
		opts.StreakDecayAfter = 5 * time.Minute
	}
	return &Service{
		progress:  progress,
		questions: questions,
		log:       log,
		boards:    boards,
		cache:     cache,
		scoring:   scoringEngine,
		adaptive:  controller,
		opts:      opts,
		logger:    logger.With().Str("component", "session").Logger(),
		locks:     newUserLocks(),
		now:       time.Now,
		pickIdx:   rand.Intn,
	}
}

// HashAnswer canonicalizes an answer (trim, lowercase) and returns its
// SHA-256 hex digest. The same function is used at seed time, so the
// plaintext correct answer never leaves the seeding path.
func HashAnswer(answer string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(answer))))
	return hex.EncodeToString(sum[:])
}

// NextQuestion resolves the user's progress, applies streak decay, and picks
// a random question at the current difficulty, avoiding an immediate repeat
// of the previously served question when an alternative exists.
func (s *Service) NextQuestion(ctx context.Context, userID, sessionID string) (*QuestionView, error) {
	progress, err := s.getOrCreateProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Force the next cache read to see durable truth.
	if err := s.cache.InvalidateProgress(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("progress cache invalidation failed")
	}

	if sessionID == "" {
		sessionID = userID
	}

	question, err := s.pickQuestion(ctx, progress.CurrentDifficulty, progress.LastQuestionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		// Pool exhausted after excluding the last question: fall back to an
		// arbitrary question at this tier, repeats allowed.
		question, err = s.questions.AnyByDifficulty(ctx, progress.CurrentDifficulty)
		if err != nil {
			return nil, fmt.Errorf("load fallback question: %w", err)
		}
		if question == nil {
			return nil, ErrNoQuestionAvailable
		}
		return s.questionView(question, sessionID, progress), nil
	}

	if err := s.cache.SetProgress(ctx, userID, progress); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("progress cache write failed")
	}

	return s.questionView(question, sessionID, progress), nil
}

// SubmitAnswer scores one submission at most once. Retries bearing the same
// idempotency key replay the original result without touching any counters.
func (s *Service) SubmitAnswer(ctx context.Context, userID, sessionID, questionID, answer string, stateVersion int64, idempotencyKey string) (*SubmitResult, error) {
	if idempotencyKey == "" {
		idempotencyKey = fmt.Sprintf("%s:%s:%d", questionID, answer, stateVersion)
	}

	if cached := s.cachedSubmission(ctx, userID, idempotencyKey); cached != nil {
		replaysTotal.Inc()
		return cached, nil
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	correct := HashAnswer(answer) == question.CorrectAnswerHash

	unlock := s.locks.lock(userID)
	defer unlock()

	// Re-check under the lock: a racing request carrying the same key may
	// have committed while this one waited.
	if cached := s.cachedSubmission(ctx, userID, idempotencyKey); cached != nil {
		replaysTotal.Inc()
		return cached, nil
	}

	progress, scoreDelta, replay, err := s.commitAnswer(ctx, userID, question, answer, correct, stateVersion, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		// Durable replay: the log already holds this key.
		replaysTotal.Inc()
		return replay, nil
	}

	if correct {
		answersTotal.WithLabelValues("correct").Inc()
	} else {
		answersTotal.WithLabelValues("incorrect").Inc()
	}

	now := s.now()
	if err := s.boards.UpsertScore(ctx, userID, progress.TotalScore, now); err != nil {
		return nil, fmt.Errorf("project score leaderboard: %w", err)
	}
	if err := s.boards.UpsertStreak(ctx, userID, progress.MaxStreak, now); err != nil {
		return nil, fmt.Errorf("project streak leaderboard: %w", err)
	}

	if err := s.cache.InvalidateProgress(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("progress cache invalidation failed")
	}

	result, err := s.finishResult(ctx, progress, correct, scoreDelta)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSubmission(ctx, userID, idempotencyKey, *result); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("idempotency cache write failed")
	}

	return result, nil
}

// commitAnswer runs the mutate-then-log critical section. It returns either
// the updated progress (new submission) or a replayed result (duplicate key
// discovered durably). Optimistic version conflicts are retried against
// re-read state.
func (s *Service) commitAnswer(ctx context.Context, userID string, question *Question, answer string, correct bool, clientVersion int64, idempotencyKey string) (*UserProgress, int, *SubmitResult, error) {
	for attempt := 0; attempt < submitRetryAttempts; attempt++ {
		progress, err := s.getOrCreateProgress(ctx, userID)
		if err != nil {
			return nil, 0, nil, err
		}

		if entry, err := s.log.GetByIdempotencyKey(ctx, userID, idempotencyKey); err != nil {
			return nil, 0, nil, fmt.Errorf("check answer log: %w", err)
		} else if entry != nil {
			result, err := s.replayFromLog(ctx, progress, entry)
			return nil, 0, result, err
		}

		if progress.StateVersion != clientVersion {
			// The client answered against a stale snapshot. The design is
			// deliberately lenient: proceed against current truth instead of
			// rejecting, since the idempotency key still dedups retries.
			s.logger.Debug().
				Str("user_id", userID).
				Int64("client_version", clientVersion).
				Int64("current_version", progress.StateVersion).
				Msg("stale state version, proceeding against current state")
		}

		streakBefore := progress.Streak
		newStreak := 0
		if correct {
			newStreak = streakBefore + 1
		}
		scoreDelta := s.scoring.ScoreDelta(correct, question.Difficulty, streakBefore)
		next := s.adaptive.Next(adaptive.Input{
			Correct:           correct,
			CurrentDifficulty: progress.CurrentDifficulty,
			CurrentStreak:     streakBefore,
			RecentCorrect:     progress.RecentCorrect,
		})

		expectedVersion := progress.StateVersion
		progress.Streak = newStreak
		if newStreak > progress.MaxStreak {
			progress.MaxStreak = newStreak
		}
		progress.TotalScore += scoreDelta
		if correct {
			progress.TotalCorrect++
		}
		progress.TotalAnswered++
		progress.CurrentDifficulty = next.NewDifficulty
		progress.LastQuestionID = question.ID
		progress.LastAnswerAt = s.now()
		progress.StateVersion++
		progress.RecentCorrect = next.UpdatedRecentCorrect

		err = s.progress.Update(ctx, progress, expectedVersion)
		if errors.Is(err, ErrVersionConflict) {
			s.logger.Debug().Str("user_id", userID).Msg("optimistic progress update lost, retrying")
			continue
		}
		if err != nil {
			return nil, 0, nil, fmt.Errorf("persist progress: %w", err)
		}

		err = s.log.Append(ctx, AnswerLogEntry{
			UserID:         userID,
			QuestionID:     question.ID,
			Difficulty:     question.Difficulty,
			Answer:         answer,
			Correct:        correct,
			ScoreDelta:     scoreDelta,
			StreakBefore:   streakBefore,
			AnsweredAt:     progress.LastAnswerAt,
			IdempotencyKey: idempotencyKey,
		})
		if errors.Is(err, ErrDuplicateSubmission) {
			// A writer on another instance beat us to this key. Treat the
			// rejection as "already answered".
			entry, lookupErr := s.log.GetByIdempotencyKey(ctx, userID, idempotencyKey)
			if lookupErr != nil || entry == nil {
				return nil, 0, nil, fmt.Errorf("duplicate submission lookup: %w", lookupErr)
			}
			result, replayErr := s.replayFromLog(ctx, progress, entry)
			return nil, 0, result, replayErr
		}
		if err != nil {
			return nil, 0, nil, fmt.Errorf("append answer log: %w", err)
		}

		return progress, scoreDelta, nil, nil
	}
	return nil, 0, nil, ErrVersionConflict
}

// Metrics aggregates recent activity for one user. Read-only apart from the
// streak-decay repair shared with question fetch.
func (s *Service) Metrics(ctx context.Context, userID string) (*MetricsView, error) {
	progress := s.cachedProgress(ctx, userID)
	if progress == nil {
		var err error
		progress, err = s.getOrCreateProgress(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	logs, err := s.log.RecentByUser(ctx, userID, metricsLogWindow)
	if err != nil {
		return nil, fmt.Errorf("load recent answers: %w", err)
	}

	histogram := make(map[int]int)
	for _, entry := range logs {
		histogram[entry.Difficulty]++
	}

	recentN := recentPerformanceN
	if len(logs) < recentN {
		recentN = len(logs)
	}
	recent := make([]RecentAnswer, 0, recentN)
	for _, entry := range logs[:recentN] {
		recent = append(recent, RecentAnswer{
			Correct:    entry.Correct,
			Difficulty: entry.Difficulty,
			AnsweredAt: entry.AnsweredAt,
		})
	}

	accuracy := 0.0
	if progress.TotalAnswered > 0 {
		accuracy = float64(progress.TotalCorrect) / float64(progress.TotalAnswered)
	}

	return &MetricsView{
		CurrentDifficulty:   progress.CurrentDifficulty,
		Streak:              progress.Streak,
		MaxStreak:           progress.MaxStreak,
		TotalScore:          progress.TotalScore,
		Accuracy:            accuracy,
		DifficultyHistogram: histogram,
		RecentPerformance:   recent,
	}, nil
}

// getOrCreateProgress lazily creates the progress record and applies streak
// decay as a read-repair so later reads in any path see the decayed value.
func (s *Service) getOrCreateProgress(ctx context.Context, userID string) (*UserProgress, error) {
	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if progress == nil {
		progress = &UserProgress{
			UserID:            userID,
			CurrentDifficulty: s.opts.MinDifficulty,
			LastAnswerAt:      s.now(),
			RecentCorrect:     []bool{},
		}
		if err := s.progress.Create(ctx, progress); err != nil {
			return nil, fmt.Errorf("create progress: %w", err)
		}
		return progress, nil
	}

	if progress.Streak > 0 && s.now().Sub(progress.LastAnswerAt) >= s.opts.StreakDecayAfter {
		progress.Streak = 0
		progress.LastAnswerAt = s.now()
		if err := s.progress.Update(ctx, progress, progress.StateVersion); err != nil {
			return nil, fmt.Errorf("persist streak decay: %w", err)
		}
		s.logger.Debug().Str("user_id", userID).Msg("streak decayed after inactivity")
	}
	return progress, nil
}

// pickQuestion selects uniformly at random from the cached (or freshly
// loaded) id pool at the given difficulty, excluding excludeID when an
// alternative exists. Returns nil when the pool is empty after exclusion.
func (s *Service) pickQuestion(ctx context.Context, difficulty int, excludeID string) (*Question, error) {
	ids, err := s.cache.GetQuestionPool(ctx, difficulty)
	if err != nil {
		s.logger.Warn().Err(err).Int("difficulty", difficulty).Msg("question pool cache read failed")
		ids = nil
	}
	observeCacheLookup("question_pool", ids != nil)

	if ids == nil {
		ids, err = s.questions.ListIDsByDifficulty(ctx, difficulty)
		if err != nil {
			return nil, fmt.Errorf("load question pool: %w", err)
		}
		if len(ids) > 0 {
			if err := s.cache.SetQuestionPool(ctx, difficulty, ids); err != nil {
				s.logger.Warn().Err(err).Int("difficulty", difficulty).Msg("question pool cache write failed")
			}
		}
	}

	available := ids
	if excludeID != "" {
		available = make([]string, 0, len(ids))
		for _, id := range ids {
			if id != excludeID {
				available = append(available, id)
			}
		}
	}
	if len(available) == 0 {
		return nil, nil
	}

	chosen := available[s.pickIdx(len(available))]
	question, err := s.questions.GetByID(ctx, chosen)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	return question, nil
}

// cachedProgress returns a cached snapshot only when it is still usable as
// truth, i.e. the streak-decay repair would not change it. Snapshots needing
// repair go through the durable path instead.
func (s *Service) cachedProgress(ctx context.Context, userID string) *UserProgress {
	progress, err := s.cache.GetProgress(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("progress cache read failed")
		observeCacheLookup("progress", false)
		return nil
	}
	observeCacheLookup("progress", progress != nil)
	if progress == nil {
		return nil
	}
	if progress.Streak > 0 && s.now().Sub(progress.LastAnswerAt) >= s.opts.StreakDecayAfter {
		return nil
	}
	return progress
}

func (s *Service) cachedSubmission(ctx context.Context, userID, idempotencyKey string) *SubmitResult {
	result, err := s.cache.GetSubmission(ctx, userID, idempotencyKey)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("idempotency cache read failed")
		observeCacheLookup("idempotency", false)
		return nil
	}
	observeCacheLookup("idempotency", result != nil)
	return result
}

// finishResult computes fresh ranks for the committed progress. Personal rank
// is the count of strictly greater values plus one; ties share no special
// handling.
func (s *Service) finishResult(ctx context.Context, progress *UserProgress, correct bool, scoreDelta int) (*SubmitResult, error) {
	rankScore, err := s.boards.CountScoresAbove(ctx, progress.TotalScore)
	if err != nil {
		return nil, fmt.Errorf("rank by score: %w", err)
	}
	rankStreak, err := s.boards.CountStreaksAbove(ctx, progress.MaxStreak)
	if err != nil {
		return nil, fmt.Errorf("rank by streak: %w", err)
	}
	return &SubmitResult{
		Correct:               correct,
		NewDifficulty:         progress.CurrentDifficulty,
		NewStreak:             progress.Streak,
		ScoreDelta:            scoreDelta,
		TotalScore:            progress.TotalScore,
		StateVersion:          progress.StateVersion,
		LeaderboardRankScore:  rankScore + 1,
		LeaderboardRankStreak: rankStreak + 1,
	}, nil
}

// replayFromLog rebuilds a result for a submission whose log entry survived
// a lost cache entry. Point-in-time fields come from the entry; totals and
// ranks reflect current state.
func (s *Service) replayFromLog(ctx context.Context, progress *UserProgress, entry *AnswerLogEntry) (*SubmitResult, error) {
	rankScore, err := s.boards.CountScoresAbove(ctx, progress.TotalScore)
	if err != nil {
		return nil, fmt.Errorf("rank by score: %w", err)
	}
	rankStreak, err := s.boards.CountStreaksAbove(ctx, progress.MaxStreak)
	if err != nil {
		return nil, fmt.Errorf("rank by streak: %w", err)
	}
	newStreak := 0
	if entry.Correct {
		newStreak = entry.StreakBefore + 1
	}
	return &SubmitResult{
		Correct:               entry.Correct,
		NewDifficulty:         progress.CurrentDifficulty,
		NewStreak:             newStreak,
		ScoreDelta:            entry.ScoreDelta,
		TotalScore:            progress.TotalScore,
		StateVersion:          progress.StateVersion,
		LeaderboardRankScore:  rankScore + 1,
		LeaderboardRankStreak: rankStreak + 1,
	}, nil
}

func (s *Service) questionView(question *Question, sessionID string, progress *UserProgress) *QuestionView {
	return &QuestionView{
		QuestionID:    question.ID,
		Difficulty:    question.Difficulty,
		Prompt:        question.Prompt,
		Choices:       question.Choices,
		SessionID:     sessionID,
		StateVersion:  progress.StateVersion,
		CurrentScore:  progress.TotalScore,
		CurrentStreak: progress.Streak,
	}
}
