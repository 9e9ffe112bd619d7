package service

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

func randomDataKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, cryptoDomain.DataKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewAESCBCHMAC(t *testing.T) {
	t.Run("Error_InvalidKeySize", func(t *testing.T) {
		_, err := NewAESCBCHMAC(make([]byte, 32), true)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

func TestAESCBCHMAC_Deterministic(t *testing.T) {
	key := randomDataKey(t)
	aead, err := NewAESCBCHMAC(key, true)
	require.NoError(t, err)

	aad := []byte("header")
	plaintext := []byte("hello")

	ct1, iv1, err := aead.Encrypt(plaintext, aad)
	require.NoError(t, err)
	ct2, iv2, err := aead.Encrypt(plaintext, aad)
	require.NoError(t, err)

	assert.Equal(t, iv1, iv2)
	assert.Equal(t, ct1, ct2)
	assert.Len(t, iv1, 16)
	assert.Len(t, ct1, 16+32, "one padded block plus truncated tag")

	ct3, _, err := aead.Encrypt([]byte("world"), aad)
	require.NoError(t, err)
	assert.NotEqual(t, ct1, ct3)

	decrypted, err := aead.Decrypt(ct1, iv1, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESCBCHMAC_Random(t *testing.T) {
	aead, err := NewAESCBCHMAC(randomDataKey(t), false)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte("x"), 32)

	ct1, iv1, err := aead.Encrypt(plaintext, nil)
	require.NoError(t, err)
	ct2, iv2, err := aead.Encrypt(plaintext, nil)
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
	assert.Len(t, ct1, 48+32, "full block of padding is appended to aligned input")

	for _, tc := range []struct {
		ct []byte
		iv []byte
	}{{ct1, iv1}, {ct2, iv2}} {
		decrypted, err := aead.Decrypt(tc.ct, tc.iv, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestAESCBCHMAC_Decrypt_Errors(t *testing.T) {
	key := randomDataKey(t)
	aead, err := NewAESCBCHMAC(key, false)
	require.NoError(t, err)

	aad := []byte("aad")
	ciphertext, iv, err := aead.Encrypt([]byte("top secret"), aad)
	require.NoError(t, err)

	t.Run("TamperedCiphertext", func(t *testing.T) {
		tampered := bytes.Clone(ciphertext)
		tampered[0] ^= 0x01
		_, err := aead.Decrypt(tampered, iv, aad)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("TamperedTag", func(t *testing.T) {
		tampered := bytes.Clone(ciphertext)
		tampered[len(tampered)-1] ^= 0x01
		_, err := aead.Decrypt(tampered, iv, aad)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("WrongAAD", func(t *testing.T) {
		_, err := aead.Decrypt(ciphertext, iv, []byte("other"))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("WrongKey", func(t *testing.T) {
		other, err := NewAESCBCHMAC(randomDataKey(t), false)
		require.NoError(t, err)
		_, err = other.Decrypt(ciphertext, iv, aad)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := aead.Decrypt(ciphertext[:20], iv, aad)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("BadIV", func(t *testing.T) {
		_, err := aead.Decrypt(ciphertext, iv[:8], aad)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidCiphertext)
	})
}

func TestPKCS7(t *testing.T) {
	for n := 0; n <= 33; n++ {
		data := bytes.Repeat([]byte{0x07}, n)
		padded := pkcs7Pad(data, 16)
		assert.Zero(t, len(padded)%16)
		assert.Greater(t, len(padded), n)

		unpadded, ok := pkcs7Unpad(padded, 16)
		require.True(t, ok)
		assert.Equal(t, data, unpadded)
	}

	_, ok := pkcs7Unpad(append(make([]byte, 15), 0x00), 16)
	assert.False(t, ok)
	_, ok = pkcs7Unpad(append(make([]byte, 15), 0x11), 16)
	assert.False(t, ok)
}
