package domain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterKey(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		raw := bytes.Repeat([]byte{0x42}, MasterKeySize)
		expected := bytes.Clone(raw)

		key, err := NewMasterKey(raw)
		require.NoError(t, err)
		assert.Equal(t, MasterKeySize, key.Size())
		assert.Equal(t, make([]byte, MasterKeySize), raw, "input must be wiped")

		buf, err := key.Open()
		require.NoError(t, err)
		defer buf.Destroy()
		assert.Equal(t, expected, buf.Bytes())
	})

	t.Run("Error_InvalidSize", func(t *testing.T) {
		raw := []byte("short")
		key, err := NewMasterKey(raw)
		assert.Nil(t, key)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
		assert.Equal(t, make([]byte, 5), raw)
	})
}
