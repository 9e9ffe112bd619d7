package service

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateToken(t *testing.T) {
	service := NewTokenService()

	t.Run("Success_GeneratesVerifiableToken", func(t *testing.T) {
		plainToken, tokenHash, err := service.GenerateToken()
		require.NoError(t, err)

		decoded, err := base64.URLEncoding.DecodeString(plainToken)
		require.NoError(t, err)
		assert.Len(t, decoded, tokenEntropy)

		assert.Contains(t, tokenHash, "$argon2id$")
		assert.True(t, service.CompareToken(plainToken, tokenHash))
	})

	t.Run("Success_GeneratesUniqueTokens", func(t *testing.T) {
		plain1, hash1, err := service.GenerateToken()
		require.NoError(t, err)
		plain2, hash2, err := service.GenerateToken()
		require.NoError(t, err)

		assert.NotEqual(t, plain1, plain2)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestTokenService_CompareToken(t *testing.T) {
	service := NewTokenService()
	tokenHash, err := service.HashToken("correct-token")
	require.NoError(t, err)

	assert.True(t, service.CompareToken("correct-token", tokenHash))
	assert.False(t, service.CompareToken("wrong-token", tokenHash))
	assert.False(t, service.CompareToken("", tokenHash))
	assert.False(t, service.CompareToken("correct-token", ""))
	assert.False(t, service.CompareToken("correct-token", "not-a-phc-string"))
}

func TestTokenService_Fingerprint(t *testing.T) {
	service := NewTokenService()

	fp := service.Fingerprint("token")
	assert.Len(t, fp, 64)
	assert.Equal(t, fp, service.Fingerprint("token"))
	assert.NotEqual(t, fp, service.Fingerprint("other"))
}
