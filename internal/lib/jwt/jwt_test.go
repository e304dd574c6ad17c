package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestNewAndParseToken(t *testing.T) {
	userID := uuid.New()
	token, expiresAt, err := NewToken(userID, "ann@example.com", secret, 30*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 2*time.Second)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ann@example.com", claims.Email)
}

func TestParseTokenExpired(t *testing.T) {
	token, _, err := NewToken(uuid.New(), "ann@example.com", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenInvalid(t *testing.T) {
	token, _, err := NewToken(uuid.New(), "ann@example.com", secret, time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ParseToken("not.a.token", secret)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
