package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brainbolt/quiz-engine/internal/auth"
	"github.com/brainbolt/quiz-engine/internal/auth/jwt"
	"github.com/brainbolt/quiz-engine/internal/config"
	"github.com/brainbolt/quiz-engine/internal/db/repository"
	"github.com/brainbolt/quiz-engine/internal/leaderboard"
	"github.com/brainbolt/quiz-engine/internal/logging"
	"github.com/brainbolt/quiz-engine/internal/server"
	"github.com/brainbolt/quiz-engine/internal/session"
	"github.com/brainbolt/quiz-engine/internal/session/adaptive"
	"github.com/brainbolt/quiz-engine/internal/session/scoring"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	userRepo := repository.NewUserRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	answerLogRepo := repository.NewAnswerLogRepository(pool)
	leaderboardRepo := repository.NewLeaderboardRepository(pool)

	authSvc := auth.NewService(userRepo, auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			Secret: []byte(cfg.Security.JWTSecret),
			TTL:    cfg.Security.JWTTTL,
			Issuer: cfg.Name,
		},
	}, logger)
	authHandlers := auth.NewHTTPHandlers(authSvc, logger)

	scoringEngine := scoring.NewEngine(scoring.Config{
		BasePointsPerCorrect: cfg.Scoring.BasePointsPerCorrect,
		StreakMultiplierStep: cfg.Scoring.StreakMultiplierStep,
		MaxStreakMultiplier:  cfg.Scoring.MaxStreakMultiplier,
	})
	adaptiveCtrl := adaptive.NewController(adaptive.Config{
		MinDifficulty:        cfg.Adaptive.MinDifficulty,
		MaxDifficulty:        cfg.Adaptive.MaxDifficulty,
		MinStreakToIncrease:  cfg.Adaptive.MinStreakToIncrease,
		ConfidenceWindowSize: cfg.Adaptive.ConfidenceWindowSize,
	})

	sessionCache := session.NewCache(redisClient, session.CacheTTLs{
		Progress:     cfg.Cache.ProgressTTL,
		Idempotency:  cfg.Cache.IdempotencyTTL,
		QuestionPool: cfg.Cache.QuestionPoolTTL,
	})

	sessionSvc := session.NewService(
		progressRepo,
		questionRepo,
		answerLogRepo,
		leaderboardRepo,
		sessionCache,
		scoringEngine,
		adaptiveCtrl,
		session.ServiceOptions{
			MinDifficulty:    cfg.Adaptive.MinDifficulty,
			StreakDecayAfter: cfg.Streak.DecayAfter,
		},
		logger,
	)
	sessionHandlers := session.NewHTTPHandlers(sessionSvc, logger)

	leaderboardSvc := leaderboard.NewService(leaderboardRepo, logger, leaderboard.ServiceOptions{
		TopN: cfg.Leaderboard.TopN,
	})
	leaderboardHandler := leaderboard.NewHTTPHandler(leaderboardSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, authSvc, server.Handlers{
		Auth:        authHandlers,
		Session:     sessionHandlers,
		Leaderboard: leaderboardHandler,
	})

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
