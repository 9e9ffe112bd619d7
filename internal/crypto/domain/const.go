package domain

import (
	"strings"
)

// Algorithm represents the AEAD scheme used to encrypt a field value.
//
// The CBC-HMAC variants follow draft-mcgrew-aead-aes-cbc-hmac-sha2 as used by
// MongoDB client-side field level encryption. The deterministic variant derives
// the IV from the plaintext, so equal plaintexts under the same data key yield
// equal ciphertexts. That leaks equality and is accepted in exchange for being
// able to compare stored values.
type Algorithm string

const (
	// AEADDeterministic is AES-256-CBC with HMAC-SHA-512 and a synthetic IV.
	AEADDeterministic Algorithm = "AEAD_AES_256_CBC_HMAC_SHA_512-Deterministic"

	// AEADRandom is AES-256-CBC with HMAC-SHA-512 and a random IV.
	AEADRandom Algorithm = "AEAD_AES_256_CBC_HMAC_SHA_512-Random"

	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// Uses the 32-byte encryption subkey of the data key, a 12-byte random nonce
	// and a 16-byte authentication tag.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// Uses the 32-byte encryption subkey of the data key, a 12-byte random nonce
	// and a 16-byte authentication tag.
	ChaCha20 Algorithm = "chacha20-poly1305"

	// DefaultAlgorithm is used when a caller does not pick one.
	DefaultAlgorithm = AEADDeterministic
)

const (
	// MasterKeySize is the length of a local master key in bytes.
	MasterKeySize = 96

	// DataKeySize is the length of a plaintext data key in bytes:
	// MAC key, encryption key and IV key, 32 bytes each.
	DataKeySize = 96

	// SubKeySize is the length of each of the three data key parts.
	SubKeySize = 32

	// DataKeyAltName is the alternate name of the single data key of a vault.
	DataKeyAltName = "dek"

	// LocalProvider names the master key provider backed by an in-process key.
	LocalProvider = "local"
)

var algorithmIDs = map[Algorithm]byte{
	AEADDeterministic: 1,
	AEADRandom:        2,
	AESGCM:            3,
	ChaCha20:          4,
}

// ParseAlgorithm validates an algorithm name. An empty name selects DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultAlgorithm, nil
	}
	alg := Algorithm(name)
	if _, ok := algorithmIDs[alg]; !ok {
		return "", ErrUnsupportedAlgorithm
	}
	return alg, nil
}

// Algorithms returns every supported algorithm name.
func Algorithms() []Algorithm {
	return []Algorithm{AEADDeterministic, AEADRandom, AESGCM, ChaCha20}
}

// ID returns the one-byte identifier stored in front of every ciphertext.
func (a Algorithm) ID() (byte, error) {
	id, ok := algorithmIDs[a]
	if !ok {
		return 0, ErrUnsupportedAlgorithm
	}
	return id, nil
}

// NonceSize returns the nonce or IV length used by the algorithm.
func (a Algorithm) NonceSize() int {
	switch a {
	case AEADDeterministic, AEADRandom:
		return 16
	case AESGCM, ChaCha20:
		return 12
	default:
		return 0
	}
}

// AlgorithmFromID maps a stored identifier back to its algorithm.
func AlgorithmFromID(id byte) (Algorithm, error) {
	for alg, algID := range algorithmIDs {
		if algID == id {
			return alg, nil
		}
	}
	return "", ErrUnsupportedAlgorithm
}
