package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("alice", secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := UsernameFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestExpiredToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("alice", secret, -time.Minute)
	require.NoError(t, err)

	_, err = UsernameFromToken(token, secret)
	assert.Error(t, err)
}

func TestWrongSecret(t *testing.T) {
	token, err := GenerateToken("alice", []byte("secret-one"), time.Hour)
	require.NoError(t, err)

	_, err = UsernameFromToken(token, []byte("secret-two"))
	assert.Error(t, err)
}

func TestGarbageToken(t *testing.T) {
	_, err := UsernameFromToken("not-a-token", []byte("secret"))
	assert.Error(t, err)
}
