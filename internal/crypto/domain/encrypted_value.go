package domain

import (
	"github.com/google/uuid"
)

// headerSize is the algorithm byte plus the 16-byte data key UUID.
const headerSize = 1 + 16

// EncryptedValue is the parsed form of a stored ciphertext:
//
//	algorithm id (1 byte) | data key id (16 bytes) | nonce | ciphertext and tag
//
// The header is also the associated data of the AEAD, so a ciphertext cannot be
// replayed under another key or algorithm.
type EncryptedValue struct {
	Algorithm  Algorithm
	KeyID      uuid.UUID
	Nonce      []byte
	Ciphertext []byte
}

// Header returns the algorithm byte and key id.
func (e EncryptedValue) Header() ([]byte, error) {
	id, err := e.Algorithm.ID()
	if err != nil {
		return nil, err
	}
	header := make([]byte, 0, headerSize)
	header = append(header, id)
	header = append(header, e.KeyID[:]...)
	return header, nil
}

// Bytes serializes the value.
func (e EncryptedValue) Bytes() ([]byte, error) {
	header, err := e.Header()
	if err != nil {
		return nil, err
	}
	if len(e.Nonce) != e.Algorithm.NonceSize() {
		return nil, ErrInvalidCiphertext
	}
	out := make([]byte, 0, len(header)+len(e.Nonce)+len(e.Ciphertext))
	out = append(out, header...)
	out = append(out, e.Nonce...)
	out = append(out, e.Ciphertext...)
	return out, nil
}

// ParseEncryptedValue splits a stored ciphertext into its parts.
func ParseEncryptedValue(data []byte) (EncryptedValue, error) {
	if len(data) < headerSize {
		return EncryptedValue{}, ErrInvalidCiphertext
	}
	alg, err := AlgorithmFromID(data[0])
	if err != nil {
		return EncryptedValue{}, ErrInvalidCiphertext
	}
	keyID, err := uuid.FromBytes(data[1:headerSize])
	if err != nil {
		return EncryptedValue{}, ErrInvalidCiphertext
	}
	rest := data[headerSize:]
	nonceSize := alg.NonceSize()
	if len(rest) <= nonceSize {
		return EncryptedValue{}, ErrInvalidCiphertext
	}
	return EncryptedValue{
		Algorithm:  alg,
		KeyID:      keyID,
		Nonce:      append([]byte(nil), rest[:nonceSize]...),
		Ciphertext: append([]byte(nil), rest[nonceSize:]...),
	}, nil
}
