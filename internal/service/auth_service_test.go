package service

import (
	"context"
	"testing"
	"time"

	"fitcabinet/coach-crm/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	coach, err := svc.Register(ctx, "Anna", "anna@studio.com", "s3cret-pass", domain.RoleCoach, "Anna's Studio")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCoach, coach.Role)
	assert.Equal(t, "Anna's Studio", coach.StudioName)
	assert.True(t, coach.Onboarded)
	assert.Empty(t, coach.PasswordHash, "hash must never leave the service")

	_, err = svc.Register(ctx, "Other", "anna@studio.com", "whatever", domain.RoleCoach, "")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, user, err := svc.Login(ctx, "anna@studio.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, coach.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, coach.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleCoach, claims.Role)
	assert.Equal(t, "coach-crm", claims.Issuer)
}

func TestLoginFailures(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Anna", "anna@studio.com", "s3cret-pass", domain.RoleCoach, "")
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable to the caller.
	_, _, err = svc.Login(ctx, "nobody@studio.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "anna@studio.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestFirstClientLoginFlipsOnboarded(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	client, err := svc.Register(ctx, "Ivan", "ivan@example.com", "one-shot-pw", domain.RoleClient, "")
	require.NoError(t, err)
	assert.False(t, client.Onboarded)

	_, user, err := svc.Login(ctx, "ivan@example.com", "one-shot-pw")
	require.NoError(t, err)
	assert.True(t, user.Onboarded)

	stored, err := users.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, stored.Onboarded)
}
