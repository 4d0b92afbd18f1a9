package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"brainbolt"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:4000"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Adaptive    Adaptive
	Scoring     Scoring
	Streak      Streak
	Leaderboard Leaderboard
	Cache       Cache
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
}

// Adaptive bounds per-user difficulty movement.
type Adaptive struct {
	MinDifficulty        int `env:"MIN_DIFFICULTY" envDefault:"1"`
	MaxDifficulty        int `env:"MAX_DIFFICULTY" envDefault:"10"`
	MinStreakToIncrease  int `env:"MIN_STREAK_TO_INCREASE_DIFFICULTY" envDefault:"2"`
	ConfidenceWindowSize int `env:"CONFIDENCE_WINDOW_SIZE" envDefault:"5"`
}

// Scoring groups the score formula constants.
type Scoring struct {
	BasePointsPerCorrect int     `env:"BASE_POINTS_PER_CORRECT" envDefault:"100"`
	StreakMultiplierStep float64 `env:"STREAK_MULTIPLIER_STEP" envDefault:"0.25"`
	MaxStreakMultiplier  float64 `env:"MAX_STREAK_MULTIPLIER" envDefault:"3"`
}

// Streak governs inactivity decay of the consecutive-correct counter.
type Streak struct {
	DecayAfter time.Duration `env:"STREAK_DECAY_AFTER" envDefault:"5m"`
}

// Leaderboard governs ranked-list queries.
type Leaderboard struct {
	TopN int `env:"LEADERBOARD_TOP_N" envDefault:"100"`
}

// Cache holds TTLs for the three redis key families.
type Cache struct {
	ProgressTTL     time.Duration `env:"CACHE_PROGRESS_TTL" envDefault:"10m"`
	IdempotencyTTL  time.Duration `env:"CACHE_IDEMPOTENCY_TTL" envDefault:"24h"`
	QuestionPoolTTL time.Duration `env:"CACHE_QUESTION_POOL_TTL" envDefault:"1h"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
