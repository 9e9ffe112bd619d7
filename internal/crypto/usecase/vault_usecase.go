// Package usecase implements key-vault lifecycle management.
//
// A vault is replaced as a whole: there is no partial or incremental update of
// its data key.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

type vaultUseCase struct {
	keyVaultRepo cryptoService.KeyVaultRepository
}

// Reset recreates the vault the provider is bound to.
func (v *vaultUseCase) Reset(ctx context.Context, provider cryptoService.EncryptionProvider) error {
	ns := provider.Namespace()

	if err := v.keyVaultRepo.Drop(ctx, ns); err != nil {
		return apperrors.Wrapf(err, "failed to drop key vault %s", ns)
	}

	if err := v.keyVaultRepo.EnsureAltNameIndex(ctx, ns); err != nil {
		return apperrors.Wrapf(err, "failed to create key vault index on %s", ns)
	}

	if _, err := provider.CreateDataKey(
		ctx,
		cryptoDomain.LocalProvider,
		[]string{cryptoDomain.DataKeyAltName},
	); err != nil {
		return apperrors.Wrapf(err, "failed to create data key in %s", ns)
	}

	return nil
}

func (v *vaultUseCase) Count(ctx context.Context, ns cryptoDomain.Namespace) (int64, error) {
	return v.keyVaultRepo.Count(ctx, ns)
}

// NewVaultUseCase creates a new VaultUseCase.
func NewVaultUseCase(keyVaultRepo cryptoService.KeyVaultRepository) VaultUseCase {
	return &vaultUseCase{keyVaultRepo: keyVaultRepo}
}
