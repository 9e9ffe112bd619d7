package app

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
	cryptoUseCase "github.com/allisson/bluegreen/internal/crypto/usecase"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyManager returns the key manager service.
func (c *Container) KeyManager() cryptoService.KeyManager {
	c.keyManagerInit.Do(func() {
		c.keyManager = cryptoService.NewKeyManager(c.AEADManager())
	})
	return c.keyManager
}

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// KMSKeeper returns the keeper for KMS_KEY_URI, or nil when passphrases are plain.
func (c *Container) KMSKeeper(ctx context.Context) (cryptoDomain.KMSKeeper, error) {
	err := c.initOnce(&c.kmsKeeperInit, "kmsKeeper", func() error {
		if c.config.KMSKeyURI == "" {
			return nil
		}
		keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return err
		}
		c.kmsKeeper = keeper
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.kmsKeeper, nil
}

// DeriveMasterKey turns a passphrase into a master key. When KMS_KEY_URI is
// set the passphrase is first decrypted as a base64 KMS ciphertext.
func (c *Container) DeriveMasterKey(ctx context.Context, passphrase string) (*cryptoDomain.MasterKey, error) {
	if passphrase == "" {
		return nil, cryptoDomain.ErrMasterKeyMissing
	}

	keeper, err := c.KMSKeeper(ctx)
	if err != nil {
		return nil, err
	}
	if keeper != nil {
		passphrase, err = c.KMSService().DecryptPassphrase(ctx, keeper, passphrase)
		if err != nil {
			return nil, err
		}
	}

	kd, err := cryptoService.ParseKeyDerivation(c.config.KeyDerivation)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, err.Error())
	}
	if kd == cryptoService.KeyDerivationLegacyMD5 {
		c.Logger().Warn("legacy-md5 key derivation is weak, migrate to argon2id with a rotation",
			slog.String("key_derivation", string(kd)))
	}

	key, err := cryptoService.DeriveMasterKey(passphrase, kd)
	if err != nil {
		return nil, err
	}
	return cryptoDomain.NewMasterKey(key)
}

// MasterKeys derives the BLUE and GREEN master keys from the configured passphrases.
func (c *Container) MasterKeys(ctx context.Context) (blue, green *cryptoDomain.MasterKey, err error) {
	err = c.initOnce(&c.masterKeysInit, "masterKeys", func() error {
		var err error
		if c.blueKey, err = c.masterKeyFor(ctx, secretsDomain.Blue, c.config.BlueMasterKey); err != nil {
			return err
		}
		c.greenKey, err = c.masterKeyFor(ctx, secretsDomain.Green, c.config.GreenMasterKey)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return c.blueKey, c.greenKey, nil
}

func (c *Container) masterKeyFor(
	ctx context.Context,
	color secretsDomain.Color,
	passphrase string,
) (*cryptoDomain.MasterKey, error) {
	key, err := c.DeriveMasterKey(ctx, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%s_MASTER_KEY: %w", color, err)
	}
	return key, nil
}

// VaultUseCase returns the key vault lifecycle use case.
func (c *Container) VaultUseCase() (cryptoUseCase.VaultUseCase, error) {
	err := c.initOnce(&c.vaultUseCaseInit, "vaultUseCase", func() error {
		keyVaultRepo, err := c.KeyVaultRepository()
		if err != nil {
			return fmt.Errorf("failed to get key vault repository for vault use case: %w", err)
		}
		c.vaultUseCase = cryptoUseCase.NewVaultUseCase(keyVaultRepo)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.vaultUseCase, nil
}
