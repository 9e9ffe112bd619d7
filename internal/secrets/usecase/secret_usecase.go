package usecase

import (
	"context"
	"strings"
	"sync"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/bluegreen/internal/crypto/usecase"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// secretUseCase implements SecretUseCase.
//
// The mutex only guards the bindings pointer so concurrent reads observe a
// complete Bindings value. It does not serialize store operations.
type secretUseCase struct {
	mu           sync.RWMutex
	bindings     *Bindings
	secretRepo   SecretRepository
	metadataRepo MetadataRepository
	vaultUseCase cryptoUseCase.VaultUseCase
}

func (s *secretUseCase) current() *Bindings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindings
}

func (s *secretUseCase) swap(bindings *Bindings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings = bindings
}

// Write encrypts the plaintext for BLUE then GREEN and upserts both documents.
func (s *secretUseCase) Write(
	ctx context.Context,
	secretID string,
	plaintext []byte,
	alg cryptoDomain.Algorithm,
) error {
	if strings.TrimSpace(secretID) == "" {
		return secretsDomain.ErrInvalidSecretID
	}
	if alg == "" {
		alg = cryptoDomain.DefaultAlgorithm
	}

	bindings := s.current()
	for _, color := range secretsDomain.Colors {
		ciphertext, err := bindings.Get(color).Provider.Encrypt(ctx, plaintext, alg, cryptoDomain.DataKeyAltName)
		if err != nil {
			return apperrors.Wrapf(err, "failed to encrypt secret for %s", color)
		}

		secret := &secretsDomain.Secret{ID: secretID, Ciphertext: ciphertext}
		if err := s.secretRepo.Upsert(ctx, color, secret); err != nil {
			return apperrors.Wrapf(err, "failed to write secret to %s", color)
		}
	}
	return nil
}

// Read fetches the secret from the active color and decrypts it.
func (s *secretUseCase) Read(ctx context.Context, secretID string) (*secretsDomain.Secret, error) {
	if strings.TrimSpace(secretID) == "" {
		return nil, secretsDomain.ErrInvalidSecretID
	}

	active, err := s.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	secret, err := s.secretRepo.Get(ctx, active, secretID)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.current().Get(active).Provider.Decrypt(ctx, secret.Ciphertext)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to decrypt secret from %s", active)
	}

	secret.Color = active
	secret.Plaintext = plaintext
	return secret, nil
}

// Rotate runs the rotation protocol against the inactive color:
//
//  1. resolve the active color and its flip
//  2. drop the inactive secret collection
//  3. bind the new master key to the inactive color
//  4. reset the inactive vault
//  5. copy every active secret, decrypting with the active provider and
//     encrypting with the new one
//
// A failure after step 2 leaves the inactive color empty or partial. Rerun
// Rotate to recover; the active color is never modified.
func (s *secretUseCase) Rotate(
	ctx context.Context,
	newMasterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) (int64, error) {
	if newMasterKey == nil {
		return 0, cryptoDomain.ErrMasterKeyMissing
	}
	if alg == "" {
		alg = cryptoDomain.DefaultAlgorithm
	}
	if _, err := alg.ID(); err != nil {
		return 0, err
	}

	active, err := s.GetActive(ctx)
	if err != nil {
		return 0, err
	}
	inactive := active.Flip()

	if err := s.secretRepo.Drop(ctx, inactive); err != nil {
		return 0, apperrors.Wrapf(err, "failed to drop %s secrets", inactive)
	}

	bindings, err := s.current().Rebind(inactive, newMasterKey)
	if err != nil {
		return 0, err
	}
	s.swap(bindings)

	target := bindings.Get(inactive).Provider
	if err := s.vaultUseCase.Reset(ctx, target); err != nil {
		return 0, err
	}

	source := bindings.Get(active).Provider

	var count int64
	err = s.secretRepo.Iterate(ctx, active, func(secret *secretsDomain.Secret) error {
		plaintext, err := source.Decrypt(ctx, secret.Ciphertext)
		if err != nil {
			return apperrors.Wrapf(err, "failed to decrypt secret %q from %s", secret.ID, active)
		}
		defer cryptoDomain.Zero(plaintext)

		ciphertext, err := target.Encrypt(ctx, plaintext, alg, cryptoDomain.DataKeyAltName)
		if err != nil {
			return apperrors.Wrapf(err, "failed to encrypt secret %q for %s", secret.ID, inactive)
		}

		if err := s.secretRepo.Create(
			ctx,
			inactive,
			&secretsDomain.Secret{ID: secret.ID, Ciphertext: ciphertext},
		); err != nil {
			return apperrors.Wrapf(err, "failed to copy secret %q to %s", secret.ID, inactive)
		}

		count++
		return nil
	})
	return count, err
}

func (s *secretUseCase) Activate(ctx context.Context, color secretsDomain.Color) error {
	if !color.Valid() {
		return secretsDomain.ErrInvalidColor
	}
	return s.metadataRepo.SetActive(ctx, color)
}

func (s *secretUseCase) GetActive(ctx context.Context) (secretsDomain.Color, error) {
	return s.metadataRepo.GetActive(ctx)
}

// Info never fails on a missing activation record; Active is empty instead.
func (s *secretUseCase) Info(ctx context.Context) (*secretsDomain.Info, error) {
	active, err := s.GetActive(ctx)
	if err != nil && !apperrors.Is(err, secretsDomain.ErrMetadataMissing) {
		return nil, err
	}

	info := &secretsDomain.Info{Active: active}
	bindings := s.current()

	for _, color := range secretsDomain.Colors {
		secrets, err := s.secretRepo.Count(ctx, color)
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to count %s secrets", color)
		}

		dataKeys, err := s.vaultUseCase.Count(ctx, bindings.Get(color).Provider.Namespace())
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to count %s data keys", color)
		}

		info.Colors = append(info.Colors, secretsDomain.ColorInfo{
			Color:    color,
			Active:   color == active,
			Secrets:  secrets,
			DataKeys: dataKeys,
		})
	}
	return info, nil
}

// Initialize resets the vault and drops the secrets of each color in turn.
// The activation record is left as it is.
func (s *secretUseCase) Initialize(ctx context.Context) error {
	bindings := s.current()
	for _, color := range secretsDomain.Colors {
		if err := s.vaultUseCase.Reset(ctx, bindings.Get(color).Provider); err != nil {
			return err
		}
		if err := s.secretRepo.Drop(ctx, color); err != nil {
			return apperrors.Wrapf(err, "failed to drop %s secrets", color)
		}
	}
	return nil
}

// NewSecretUseCase creates a new SecretUseCase.
func NewSecretUseCase(
	bindings *Bindings,
	secretRepo SecretRepository,
	metadataRepo MetadataRepository,
	vaultUseCase cryptoUseCase.VaultUseCase,
) SecretUseCase {
	return &secretUseCase{
		bindings:     bindings,
		secretRepo:   secretRepo,
		metadataRepo: metadataRepo,
		vaultUseCase: vaultUseCase,
	}
}
