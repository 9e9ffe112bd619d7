// Package usecase implements the blue/green secret service: dual writes, reads
// from the active color, rotation of the inactive color and activation.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// SecretRepository persists secret documents, one collection per color.
type SecretRepository interface {
	// Upsert replaces the ciphertext stored under secret.ID, inserting it when absent.
	Upsert(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error

	// Create inserts a new document. Returns ErrSecretExists on a duplicate id.
	Create(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error

	// Get returns ErrSecretNotFound when the id is absent.
	Get(ctx context.Context, color secretsDomain.Color, id string) (*secretsDomain.Secret, error)

	// Iterate calls fn for every document in store order and stops at the first error.
	Iterate(ctx context.Context, color secretsDomain.Color, fn func(*secretsDomain.Secret) error) error

	// Count returns the number of documents of color.
	Count(ctx context.Context, color secretsDomain.Color) (int64, error)

	// Drop removes every document of color. Dropping an empty collection is not an error.
	Drop(ctx context.Context, color secretsDomain.Color) error
}

// MetadataRepository persists the activation record.
type MetadataRepository interface {
	// GetActive returns ErrMetadataMissing when no color was activated.
	GetActive(ctx context.Context) (secretsDomain.Color, error)

	// SetActive creates or overwrites the activation record.
	SetActive(ctx context.Context, color secretsDomain.Color) error
}

// SecretUseCase is the surface exposed to the CLI and the HTTP API.
//
// Mutating operations (Rotate, Initialize, Activate) are not atomic and take no
// cross-process lock. They must be serialized by the operator.
type SecretUseCase interface {
	// Write encrypts plaintext under both colors and upserts both documents.
	// A failure on the second color leaves the first one written.
	Write(ctx context.Context, secretID string, plaintext []byte, alg cryptoDomain.Algorithm) error

	// Read decrypts the secret from the active color.
	Read(ctx context.Context, secretID string) (*secretsDomain.Secret, error)

	// Rotate re-keys the inactive color with newMasterKey and copies every secret
	// of the active color into it. Returns the number of secrets copied. The
	// active color is left untouched and activation is not flipped.
	Rotate(ctx context.Context, newMasterKey *cryptoDomain.MasterKey, alg cryptoDomain.Algorithm) (int64, error)

	// Activate sets the active color without checking its vault.
	Activate(ctx context.Context, color secretsDomain.Color) error

	// GetActive returns the active color.
	GetActive(ctx context.Context) (secretsDomain.Color, error)

	// Info reports the active color and per-color counts.
	Info(ctx context.Context) (*secretsDomain.Info, error)

	// Initialize resets both vaults and drops both secret collections.
	Initialize(ctx context.Context) error
}
