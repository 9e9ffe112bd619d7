package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

func newTestMasterKey(t *testing.T) *cryptoDomain.MasterKey {
	t.Helper()
	raw, err := GenerateMasterKey()
	require.NoError(t, err)
	masterKey, err := cryptoDomain.NewMasterKey(raw)
	require.NoError(t, err)
	return masterKey
}

func TestKeyManager_CreateAndDecryptDataKey(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	masterKey := newTestMasterKey(t)

	dataKey, err := km.CreateDataKey(masterKey, []string{cryptoDomain.DataKeyAltName})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, dataKey.ID)
	assert.Equal(t, []string{"dek"}, dataKey.KeyAltNames)
	assert.Equal(t, cryptoDomain.LocalProvider, dataKey.Provider)
	assert.False(t, dataKey.CreatedAt.IsZero())
	// IV, 96-byte key plus a full padding block, tag.
	assert.Len(t, dataKey.KeyMaterial, 16+112+32)

	plainKey, err := km.DecryptDataKey(&dataKey, masterKey)
	require.NoError(t, err)
	assert.Len(t, plainKey, cryptoDomain.DataKeySize)

	again, err := km.DecryptDataKey(&dataKey, masterKey)
	require.NoError(t, err)
	assert.Equal(t, plainKey, again)
}

func TestKeyManager_DecryptDataKey_Errors(t *testing.T) {
	km := NewKeyManager(NewAEADManager())
	masterKey := newTestMasterKey(t)

	dataKey, err := km.CreateDataKey(masterKey, nil)
	require.NoError(t, err)

	t.Run("WrongMasterKey", func(t *testing.T) {
		_, err := km.DecryptDataKey(&dataKey, newTestMasterKey(t))
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("MaterialMovedToAnotherKey", func(t *testing.T) {
		other, err := km.CreateDataKey(masterKey, nil)
		require.NoError(t, err)
		other.KeyMaterial = dataKey.KeyMaterial

		_, err = km.DecryptDataKey(&other, masterKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("EmptyMaterial", func(t *testing.T) {
		broken := dataKey
		broken.KeyMaterial = nil
		_, err := km.DecryptDataKey(&broken, masterKey)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidCiphertext)
	})
}
