package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	raw, err := tokens.Generate("u1")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := tokens.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a", time.Hour).Generate("u1")
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	tokens.expiry = -time.Minute

	raw, err := tokens.Generate("u1")
	require.NoError(t, err)

	_, err = tokens.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tokens.Validate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}

func TestValidateRejectsEmptyUID(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	raw, err := tokens.Generate("")
	require.NoError(t, err)

	_, err = tokens.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
