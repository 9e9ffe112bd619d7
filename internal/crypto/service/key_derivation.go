package service

import (
	"crypto/md5" //nolint:gosec // legacy-md5 only reopens stores created with the MD5 transform
	"crypto/rand"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

// KeyDerivation names the scheme that turns a passphrase into a master key.
type KeyDerivation string

const (
	// KeyDerivationArgon2id runs Argon2id with a fixed application salt.
	KeyDerivationArgon2id KeyDerivation = "argon2id"

	// KeyDerivationLegacyMD5 copies the MD5 digest of the passphrase into a
	// zero-filled 96-byte key. Only 16 bytes carry entropy. It keeps legacy
	// passphrases working; rotate both colors to argon2id afterwards.
	KeyDerivationLegacyMD5 KeyDerivation = "legacy-md5"
)

// Argon2id parameters. Changing any of them changes every derived key.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2Salt    = "bluegreen/master-key/v1"
)

// ParseKeyDerivation validates a scheme name. An empty name selects argon2id.
func ParseKeyDerivation(name string) (KeyDerivation, error) {
	switch kd := KeyDerivation(strings.ToLower(strings.TrimSpace(name))); kd {
	case "":
		return KeyDerivationArgon2id, nil
	case KeyDerivationArgon2id, KeyDerivationLegacyMD5:
		return kd, nil
	default:
		return "", fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedKeyDerivation, name)
	}
}

// DeriveMasterKey deterministically derives a 96-byte master key from passphrase.
func DeriveMasterKey(passphrase string, kd KeyDerivation) ([]byte, error) {
	if passphrase == "" {
		return nil, cryptoDomain.ErrMasterKeyMissing
	}

	switch kd {
	case KeyDerivationArgon2id:
		return argon2.IDKey(
			[]byte(passphrase),
			[]byte(argon2Salt),
			argon2Time,
			argon2Memory,
			argon2Threads,
			cryptoDomain.MasterKeySize,
		), nil
	case KeyDerivationLegacyMD5:
		digest := md5.Sum([]byte(passphrase)) //nolint:gosec
		key := make([]byte, cryptoDomain.MasterKeySize)
		copy(key, digest[:])
		return key, nil
	default:
		return nil, cryptoDomain.ErrUnsupportedKeyDerivation
	}
}

// GenerateMasterKey returns 96 bytes from crypto/rand.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, cryptoDomain.MasterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return key, nil
}
