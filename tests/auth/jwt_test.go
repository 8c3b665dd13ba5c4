package auth_test

import (
	"testing"
	"time"

	"github.com/electrade/network-api/internal/auth"
	"github.com/electrade/network-api/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenManager(secret string, ttl int) *auth.TokenManager {
	return auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: secret,
		TokenTTL:  ttl,
	}, "network-api-test")
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := newTokenManager("issue-validate-secret", 3600)
	userID := uuid.New()

	token, expiresAt, err := tm.Issue(userID, "user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), expiresAt, 5*time.Second)

	parsedID, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsedID)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := newTokenManager("expired-secret", -60)

	token, _, err := tm.Issue(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer := newTokenManager("secret-one", 3600)
	validator := newTokenManager("secret-two", 3600)

	token, _, err := issuer.Issue(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_GarbageToken(t *testing.T) {
	tm := newTokenManager("garbage-secret", 3600)

	_, err := tm.Validate("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = tm.Validate("")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("a sturdy passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, "a sturdy passphrase", hash)

	assert.NoError(t, auth.CheckPassword(hash, "a sturdy passphrase"))
	assert.Error(t, auth.CheckPassword(hash, "the wrong passphrase"))
}
