package service

import (
	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

// AEADManagerService implements AEADManager.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManager instance.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher builds the cipher for alg from a 96-byte data key. The CBC-HMAC
// variants use all three subkeys. AES-GCM and ChaCha20-Poly1305 use the
// encryption subkey only.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.DataKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	encKey := key[cryptoDomain.SubKeySize : 2*cryptoDomain.SubKeySize]

	switch alg {
	case cryptoDomain.AEADDeterministic:
		return NewAESCBCHMAC(key, true)
	case cryptoDomain.AEADRandom:
		return NewAESCBCHMAC(key, false)
	case cryptoDomain.AESGCM:
		return NewAESGCM(encKey)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(encKey)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
