package auth

import (
	"context"
	"testing"
	"time"

	"horizonx-machine/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, clock clockwork.Clock) domain.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(string(hash), "secret", "machine-1", time.Hour, clock)
}

func TestLogin_Success(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, clock)

	res, err := svc.Login(context.Background(), domain.LoginRequest{Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, clock.Now().Add(time.Hour).Unix(), res.ExpiresAt)

	assert.NoError(t, svc.Validate(res.AccessToken))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Password: "battery-staple"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_NoPasswordConfigured(t *testing.T) {
	svc := NewService("", "secret", "machine-1", time.Hour, nil)

	_, err := svc.Login(context.Background(), domain.LoginRequest{Password: "anything-at-all"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestValidate_Expired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestService(t, clock)

	res, err := svc.Login(context.Background(), domain.LoginRequest{Password: "correct-horse"})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	assert.ErrorIs(t, svc.Validate(res.AccessToken), domain.ErrUnauthorized)
}

func TestValidate_ForeignToken(t *testing.T) {
	svc := newTestService(t, nil)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "machine-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Validate(foreign), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.Validate("not-a-token"), domain.ErrUnauthorized)
	assert.ErrorIs(t, svc.Validate(""), domain.ErrUnauthorized)
}
