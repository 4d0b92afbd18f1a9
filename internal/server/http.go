package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/brainbolt/quiz-engine/internal/auth"
	"github.com/brainbolt/quiz-engine/internal/config"
	"github.com/brainbolt/quiz-engine/internal/leaderboard"
	"github.com/brainbolt/quiz-engine/internal/session"
)

// Handlers bundles the HTTP surfaces wired into the server.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	Session     *session.HTTPHandlers
	Leaderboard *leaderboard.HTTPHandler
}

// NewHTTPServer wires all routes for the API service. The quiz routes sit
// behind the auth middleware; leaderboards and health are public.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pingDependencies(r.Context(), pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/auth/register", h.Auth.Register)
	mux.HandleFunc("/v1/auth/login", h.Auth.Login)

	requireAuth := auth.Middleware(authSvc, logger)
	mux.Handle("/v1/quiz/next", requireAuth(http.HandlerFunc(h.Session.NextQuestion)))
	mux.Handle("/v1/quiz/answer", requireAuth(http.HandlerFunc(h.Session.SubmitAnswer)))
	mux.Handle("/v1/quiz/metrics", requireAuth(http.HandlerFunc(h.Session.Metrics)))

	mux.HandleFunc("/v1/leaderboards/score", h.Leaderboard.HandleScore)
	mux.HandleFunc("/v1/leaderboards/streak", h.Leaderboard.HandleStreak)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}
