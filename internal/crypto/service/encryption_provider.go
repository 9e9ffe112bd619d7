package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

// ErrUnsupportedProvider is returned when a data key is requested from a
// master key provider other than "local".
var ErrUnsupportedProvider = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported master key provider")

// LocalEncryptionProvider implements EncryptionProvider with an in-process
// master key. Every Encrypt and Decrypt fetches the data key from the key vault
// and unwraps it, so a vault reset is observed immediately.
type LocalEncryptionProvider struct {
	keyVault    KeyVaultRepository
	namespace   cryptoDomain.Namespace
	masterKey   *cryptoDomain.MasterKey
	keyManager  KeyManager
	aeadManager AEADManager
}

// NewLocalEncryptionProvider binds a master key to a key-vault namespace.
func NewLocalEncryptionProvider(
	keyVault KeyVaultRepository,
	namespace cryptoDomain.Namespace,
	masterKey *cryptoDomain.MasterKey,
	keyManager KeyManager,
	aeadManager AEADManager,
) *LocalEncryptionProvider {
	return &LocalEncryptionProvider{
		keyVault:    keyVault,
		namespace:   namespace,
		masterKey:   masterKey,
		keyManager:  keyManager,
		aeadManager: aeadManager,
	}
}

// Namespace returns the bound key vault.
func (p *LocalEncryptionProvider) Namespace() cryptoDomain.Namespace {
	return p.namespace
}

// CreateDataKey creates and stores a new data key wrapped by the bound master key.
func (p *LocalEncryptionProvider) CreateDataKey(
	ctx context.Context,
	provider string,
	altNames []string,
) (uuid.UUID, error) {
	if provider != cryptoDomain.LocalProvider {
		return uuid.Nil, ErrUnsupportedProvider
	}

	dataKey, err := p.keyManager.CreateDataKey(p.masterKey, altNames)
	if err != nil {
		return uuid.Nil, err
	}

	if err := p.keyVault.Create(ctx, p.namespace, &dataKey); err != nil {
		return uuid.Nil, err
	}
	return dataKey.ID, nil
}

// Encrypt encrypts plaintext with the data key named keyAltName.
func (p *LocalEncryptionProvider) Encrypt(
	ctx context.Context,
	plaintext []byte,
	alg cryptoDomain.Algorithm,
	keyAltName string,
) ([]byte, error) {
	dataKey, err := p.keyVault.GetByAltName(ctx, p.namespace, keyAltName)
	if err != nil {
		return nil, err
	}

	value := cryptoDomain.EncryptedValue{Algorithm: alg, KeyID: dataKey.ID}
	aad, err := value.Header()
	if err != nil {
		return nil, err
	}

	aead, err := p.cipher(dataKey, alg)
	if err != nil {
		return nil, err
	}

	value.Ciphertext, value.Nonce, err = aead.Encrypt(plaintext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt value: %w", err)
	}
	return value.Bytes()
}

// Decrypt parses the ciphertext header, loads the data key it names and decrypts.
func (p *LocalEncryptionProvider) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	value, err := cryptoDomain.ParseEncryptedValue(ciphertext)
	if err != nil {
		return nil, err
	}

	dataKey, err := p.keyVault.Get(ctx, p.namespace, value.KeyID)
	if err != nil {
		return nil, err
	}

	aad, err := value.Header()
	if err != nil {
		return nil, err
	}

	aead, err := p.cipher(dataKey, value.Algorithm)
	if err != nil {
		return nil, err
	}

	return aead.Decrypt(value.Ciphertext, value.Nonce, aad)
}

func (p *LocalEncryptionProvider) cipher(dataKey *cryptoDomain.DataKey, alg cryptoDomain.Algorithm) (AEAD, error) {
	plainKey, err := p.keyManager.DecryptDataKey(dataKey, p.masterKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plainKey)

	return p.aeadManager.CreateCipher(plainKey, alg)
}
