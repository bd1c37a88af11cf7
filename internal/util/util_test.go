package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)
	assert.True(t, CheckPassword("pw123", hash))
	assert.False(t, CheckPassword("pw124", hash))
}

func TestJWTSubject(t *testing.T) {
	token, err := GenerateJWT("pm", "s3cret", time.Hour)
	require.NoError(t, err)

	sub, err := ParseJWT(token, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "pm", sub)

	_, err = ParseJWT(token, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTExpired(t *testing.T) {
	token, err := GenerateJWT("pm", "s3cret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "s3cret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
