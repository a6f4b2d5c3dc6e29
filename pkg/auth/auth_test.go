package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateToken(userID, "ada@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestJWTRejectsForeignSecretAndExpiry(t *testing.T) {
	token, err := NewJWTService("secret", time.Hour).GenerateToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = NewJWTService("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	expired, err := NewJWTService("secret", -time.Minute).GenerateToken(uuid.New(), "a@b.c")
	require.NoError(t, err)
	_, err = NewJWTService("secret", time.Hour).ValidateToken(expired)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}
