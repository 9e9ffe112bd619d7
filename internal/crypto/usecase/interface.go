package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
)

// VaultUseCase manages the lifecycle of a key vault and its single data key.
type VaultUseCase interface {
	// Reset drops the key vault, recreates its unique alternate-name index and
	// creates one new data key named "dek" through provider. Every value
	// encrypted under the previous data key becomes undecryptable.
	Reset(ctx context.Context, provider cryptoService.EncryptionProvider) error

	// Count returns the number of data keys stored in the vault.
	Count(ctx context.Context, ns cryptoDomain.Namespace) (int64, error)
}
