package domain

import (
	"time"

	"github.com/google/uuid"
)

// DataKey is a key-vault document: a 96-byte symmetric data key wrapped by a
// master key, addressed by ID or by one of its alternate names.
type DataKey struct {
	ID          uuid.UUID // Unique identifier (UUIDv7)
	KeyMaterial []byte    // Data key wrapped with the master key
	KeyAltNames []string  // Alternate names, unique per key vault
	Provider    string    // Master key provider, always LocalProvider
	Status      int       // 0 = active
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAltName reports whether the data key is tagged with name.
func (d *DataKey) HasAltName(name string) bool {
	for _, n := range d.KeyAltNames {
		if n == name {
			return true
		}
	}
	return false
}

// Namespace addresses one key-vault collection, for example "csfle.blue_vault".
type Namespace struct {
	Database   string
	Collection string
}

// String returns the dotted form used by MongoDB.
func (n Namespace) String() string {
	return n.Database + "." + n.Collection
}
