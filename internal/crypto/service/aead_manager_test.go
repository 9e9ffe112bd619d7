package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

func TestAEADManager_CreateCipher(t *testing.T) {
	manager := NewAEADManager()
	key := randomDataKey(t)

	tests := []struct {
		alg      cryptoDomain.Algorithm
		wantType any
	}{
		{cryptoDomain.AEADDeterministic, &AESCBCHMACCipher{}},
		{cryptoDomain.AEADRandom, &AESCBCHMACCipher{}},
		{cryptoDomain.AESGCM, &AESGCMCipher{}},
		{cryptoDomain.ChaCha20, &ChaCha20Poly1305Cipher{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.alg), func(t *testing.T) {
			aead, err := manager.CreateCipher(key, tt.alg)
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, aead)

			ciphertext, nonce, err := aead.Encrypt([]byte("round trip"), []byte("aad"))
			require.NoError(t, err)
			assert.Len(t, nonce, tt.alg.NonceSize())

			plaintext, err := aead.Decrypt(ciphertext, nonce, []byte("aad"))
			require.NoError(t, err)
			assert.Equal(t, []byte("round trip"), plaintext)

			_, err = aead.Decrypt(ciphertext, nonce, []byte("other"))
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		})
	}

	t.Run("Error_InvalidKeySize", func(t *testing.T) {
		_, err := manager.CreateCipher(make([]byte, 32), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("Error_UnsupportedAlgorithm", func(t *testing.T) {
		_, err := manager.CreateCipher(key, "des")
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})
}
