package domain

import (
	"github.com/awnumar/memguard"
)

// MasterKey is the 96-byte local key that wraps a vault's data key.
//
// The key material lives in a memguard enclave, encrypted while at rest in
// process memory. It is decrypted into a locked buffer only while a data key
// is being wrapped or unwrapped. A MasterKey is never persisted.
type MasterKey struct {
	enclave *memguard.Enclave
}

// NewMasterKey moves key into protected memory. The input slice is wiped,
// whether or not the size check passes.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != MasterKeySize {
		Zero(key)
		return nil, ErrInvalidKeySize
	}
	return &MasterKey{enclave: memguard.NewEnclave(key)}, nil
}

// Open decrypts the key into a locked buffer. Callers must Destroy the buffer.
func (m *MasterKey) Open() (*memguard.LockedBuffer, error) {
	return m.enclave.Open()
}

// Size returns the key length in bytes.
func (m *MasterKey) Size() int {
	return m.enclave.Size()
}
