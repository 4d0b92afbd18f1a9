package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brainbolt/quiz-engine/internal/auth/jwt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore exposes the DB operations required by auth flows.
type UserStore interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// TokenPair is the credential bundle returned on register/login.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ServiceOptions configures auth behavior.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
}

// Service issues credentials and validates tokens for the API surface.
type Service struct {
	users  UserStore
	tokens *jwt.Manager
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService constructs the auth service.
func NewService(users UserStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	ttl := opts.TokenConfig.TTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{
		users:  users,
		tokens: jwt.NewManager(opts.TokenConfig),
		ttl:    ttl,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// Register creates a user and returns a signed token.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil, fmt.Errorf("email is required")
	}
	if displayName == "" {
		displayName = email
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return &user, tokens, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(*user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// ValidateToken verifies a bearer token and returns its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokens.Validate(token)
}

func (s *Service) issueTokens(user User) (*TokenPair, error) {
	access, err := s.tokens.Generate(user.ID.String(), user.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &TokenPair{AccessToken: access, ExpiresIn: int64(s.ttl.Seconds())}, nil
}
