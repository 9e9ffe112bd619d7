package domain

import (
	"github.com/allisson/bluegreen/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors so the
// HTTP layer and the CLI can map them without knowing about cryptography.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a master key or data key has the wrong length.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidCiphertext indicates a stored value is too short or carries an unknown header.
	ErrInvalidCiphertext = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext")

	// ErrDecryptionFailed indicates an authentication tag did not verify.
	//
	// Returned for a wrong master key, a wrong data key and tampered ciphertext
	// alike. The specific cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrIntegrity, "decryption failed")

	// ErrDataKeyNotFound indicates the key vault holds no matching data key.
	ErrDataKeyNotFound = errors.Wrap(errors.ErrNotFound, "data key not found")

	// ErrDataKeyAltNameTaken indicates another data key already uses the alternate name.
	ErrDataKeyAltNameTaken = errors.Wrap(errors.ErrConflict, "data key alternate name already exists")

	// ErrDataKeyExists indicates a data key with the same id is already stored.
	ErrDataKeyExists = errors.Wrap(errors.ErrConflict, "data key already exists")

	// ErrMasterKeyMissing indicates no passphrase was configured for a color.
	ErrMasterKeyMissing = errors.Wrap(errors.ErrConfiguration, "master key missing")

	// ErrUnsupportedKeyDerivation indicates an unknown passphrase derivation scheme.
	ErrUnsupportedKeyDerivation = errors.Wrap(errors.ErrConfiguration, "unsupported key derivation")
)
