package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens KMS keepers and unwraps passphrases stored as KMS ciphertext.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI (gcpkms://, awskms://,
	// azurekeyvault://, hashivault:// or base64key://).
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)

	// DecryptPassphrase decodes a base64 KMS ciphertext and decrypts it.
	DecryptPassphrase(ctx context.Context, keeper cryptoDomain.KMSKeeper, encoded string) (string, error)
}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

func (k *kmsService) DecryptPassphrase(
	ctx context.Context,
	keeper cryptoDomain.KMSKeeper,
	encoded string,
) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", cryptoDomain.ErrMasterKeyMissing
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: passphrase is not valid base64: %v", cryptoDomain.ErrInvalidCiphertext, err)
	}

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt passphrase with KMS: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	return string(plaintext), nil
}
