package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

func decodeSecretDocument(t *testing.T, raw bson.D) secretDocument {
	t.Helper()
	data, err := bson.Marshal(raw)
	require.NoError(t, err)

	var doc secretDocument
	require.NoError(t, bson.Unmarshal(data, &doc))
	return doc
}

func TestSecretDocument(t *testing.T) {
	t.Run("GenericBinary", func(t *testing.T) {
		data, err := bson.Marshal(newSecretDocument(&secretsDomain.Secret{ID: "s1", Ciphertext: []byte{0x01, 0x02}}))
		require.NoError(t, err)

		var raw bson.Raw = data
		subtype, payload := raw.Lookup("secret").Binary()
		assert.Equal(t, genericBinarySubtype, subtype)
		assert.Equal(t, []byte{0x01, 0x02}, payload)

		var doc secretDocument
		require.NoError(t, bson.Unmarshal(data, &doc))
		secret, err := doc.toSecret()
		require.NoError(t, err)
		assert.Equal(t, "s1", secret.ID)
		assert.Equal(t, []byte{0x01, 0x02}, secret.Ciphertext)
	})

	t.Run("ClientSideEncryptedPayload", func(t *testing.T) {
		// FLE1 layout: algorithm byte, key UUID, original BSON type, IV and ciphertext.
		fle := append([]byte{0x01}, make([]byte, 16)...)
		fle = append(fle, 0x02)
		fle = append(fle, make([]byte, 32)...)
		doc := decodeSecretDocument(t, bson.D{
			{Key: "_id", Value: "s1"},
			{Key: "secret", Value: bson.Binary{Subtype: encryptedBinarySubtype, Data: fle}},
		})

		secret, err := doc.toSecret()
		assert.Nil(t, secret)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidCiphertext)
		assert.Contains(t, err.Error(), "s1")
	})
}
