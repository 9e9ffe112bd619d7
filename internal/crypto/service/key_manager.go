package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

// KeyManagerService implements KeyManager.
//
// Data keys are wrapped with the master key using the random CBC-HMAC variant.
// The data key id is the associated data, so wrapped material cannot be moved
// between key documents. KeyMaterial is IV || ciphertext || tag.
type KeyManagerService struct {
	aeadManager AEADManager
}

// NewKeyManager creates a new KeyManagerService.
func NewKeyManager(aeadManager AEADManager) *KeyManagerService {
	return &KeyManagerService{
		aeadManager: aeadManager,
	}
}

// CreateDataKey generates 96 random bytes and wraps them with masterKey.
func (km *KeyManagerService) CreateDataKey(
	masterKey *cryptoDomain.MasterKey,
	altNames []string,
) (cryptoDomain.DataKey, error) {
	plainKey := make([]byte, cryptoDomain.DataKeySize)
	if _, err := rand.Read(plainKey); err != nil {
		return cryptoDomain.DataKey{}, fmt.Errorf("failed to generate data key: %w", err)
	}
	defer cryptoDomain.Zero(plainKey)

	id := uuid.Must(uuid.NewV7())

	wrapped, err := km.wrap(masterKey, plainKey, id)
	if err != nil {
		return cryptoDomain.DataKey{}, err
	}

	now := time.Now().UTC()
	return cryptoDomain.DataKey{
		ID:          id,
		KeyMaterial: wrapped,
		KeyAltNames: append([]string(nil), altNames...),
		Provider:    cryptoDomain.LocalProvider,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DecryptDataKey unwraps the data key. A wrong master key yields ErrDecryptionFailed.
func (km *KeyManagerService) DecryptDataKey(
	dataKey *cryptoDomain.DataKey,
	masterKey *cryptoDomain.MasterKey,
) ([]byte, error) {
	if len(dataKey.KeyMaterial) <= cbcIVSize {
		return nil, cryptoDomain.ErrInvalidCiphertext
	}

	aead, err := km.masterCipher(masterKey)
	if err != nil {
		return nil, err
	}

	iv := dataKey.KeyMaterial[:cbcIVSize]
	ciphertext := dataKey.KeyMaterial[cbcIVSize:]

	plainKey, err := aead.Decrypt(ciphertext, iv, dataKey.ID[:])
	if err != nil {
		return nil, err
	}
	if len(plainKey) != cryptoDomain.DataKeySize {
		cryptoDomain.Zero(plainKey)
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return plainKey, nil
}

func (km *KeyManagerService) wrap(masterKey *cryptoDomain.MasterKey, plainKey []byte, id uuid.UUID) ([]byte, error) {
	aead, err := km.masterCipher(masterKey)
	if err != nil {
		return nil, err
	}

	ciphertext, iv, err := aead.Encrypt(plainKey, id[:])
	if err != nil {
		return nil, fmt.Errorf("failed to wrap data key: %w", err)
	}
	return append(iv, ciphertext...), nil
}

func (km *KeyManagerService) masterCipher(masterKey *cryptoDomain.MasterKey) (AEAD, error) {
	buf, err := masterKey.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open master key: %w", err)
	}
	defer buf.Destroy()

	return km.aeadManager.CreateCipher(buf.Bytes(), cryptoDomain.AEADRandom)
}
