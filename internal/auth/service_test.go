package auth

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainbolt/quiz-engine/internal/auth/jwt"
)

type stubUserStore struct {
	users map[string]User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: map[string]User{}}
}

func (s *stubUserStore) Create(_ context.Context, user User) error {
	s.users[user.Email] = user
	return nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func newTestService() (*Service, *stubUserStore) {
	store := newStubUserStore()
	svc := NewService(store, ServiceOptions{
		TokenConfig: jwt.TokenConfig{Secret: []byte("test-secret")},
	}, zerolog.Nop())
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, "Player@Example.com", "hunter2secret", "Player One")
	require.NoError(t, err)
	assert.Equal(t, "player@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)

	loggedIn, loginTokens, err := svc.Login(ctx, "player@example.com", "hunter2secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginTokens.AccessToken)

	claims, err := svc.ValidateToken(loginTokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@b.com", "hunter2secret", "A")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "a@b.com", "otherpassword", "B")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Register(context.Background(), "a@b.com", "short", "A")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@b.com", "hunter2secret", "A")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@b.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "unknown@b.com", "whatever123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
