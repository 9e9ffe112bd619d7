// Package service provides the cryptographic building blocks of a vault: AEAD
// ciphers, data key wrapping, passphrase derivation and the encryption provider
// that binds a master key to a key-vault namespace.
package service

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data operations.
type AEAD interface {
	// Encrypt encrypts plaintext with associated data and returns the ciphertext
	// (authentication tag included) and the nonce or IV that was used.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt verifies and decrypts. Returns ErrDecryptionFailed when the tag does not verify.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD cipher instances from a 96-byte data key.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyManager creates data keys and unwraps them with a master key.
type KeyManager interface {
	// CreateDataKey generates a random data key wrapped by masterKey.
	CreateDataKey(masterKey *cryptoDomain.MasterKey, altNames []string) (cryptoDomain.DataKey, error)

	// DecryptDataKey unwraps the data key. The caller must Zero the result.
	DecryptDataKey(dataKey *cryptoDomain.DataKey, masterKey *cryptoDomain.MasterKey) ([]byte, error)
}

// KeyVaultRepository persists data keys in a key-vault namespace.
type KeyVaultRepository interface {
	// Drop removes the whole key vault. Dropping a missing vault is not an error.
	Drop(ctx context.Context, ns cryptoDomain.Namespace) error

	// EnsureAltNameIndex creates the unique index over alternate names.
	EnsureAltNameIndex(ctx context.Context, ns cryptoDomain.Namespace) error

	// Create stores a data key. Returns ErrDataKeyAltNameTaken on a duplicate alternate name.
	Create(ctx context.Context, ns cryptoDomain.Namespace, dataKey *cryptoDomain.DataKey) error

	// Get returns ErrDataKeyNotFound when no key has the id.
	Get(ctx context.Context, ns cryptoDomain.Namespace, id uuid.UUID) (*cryptoDomain.DataKey, error)

	// GetByAltName returns ErrDataKeyNotFound when no key has the alternate name.
	GetByAltName(ctx context.Context, ns cryptoDomain.Namespace, altName string) (*cryptoDomain.DataKey, error)

	// Count returns the number of data keys in the vault.
	Count(ctx context.Context, ns cryptoDomain.Namespace) (int64, error)
}

// EncryptionProvider encrypts and decrypts field values with the data keys of
// one key vault. An instance is bound to exactly one master key and namespace.
type EncryptionProvider interface {
	// CreateDataKey creates a data key under the given master key provider.
	CreateDataKey(ctx context.Context, provider string, altNames []string) (uuid.UUID, error)

	// Encrypt encrypts plaintext with the data key named keyAltName.
	Encrypt(ctx context.Context, plaintext []byte, alg cryptoDomain.Algorithm, keyAltName string) ([]byte, error)

	// Decrypt resolves the data key from the ciphertext header and decrypts.
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)

	// Namespace returns the key vault the provider is bound to.
	Namespace() cryptoDomain.Namespace
}
