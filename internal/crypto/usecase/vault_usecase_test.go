package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/crypto/repository/memory"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
)

var testNamespace = cryptoDomain.Namespace{Database: "csfle", Collection: "green_vault"}

func newProvider(t *testing.T, repo cryptoService.KeyVaultRepository) cryptoService.EncryptionProvider {
	t.Helper()
	raw, err := cryptoService.GenerateMasterKey()
	require.NoError(t, err)
	masterKey, err := cryptoDomain.NewMasterKey(raw)
	require.NoError(t, err)

	aeadManager := cryptoService.NewAEADManager()
	return cryptoService.NewLocalEncryptionProvider(
		repo,
		testNamespace,
		masterKey,
		cryptoService.NewKeyManager(aeadManager),
		aeadManager,
	)
}

// failingKeyVault fails the configured step.
type failingKeyVault struct {
	cryptoService.KeyVaultRepository
	dropErr  error
	indexErr error
}

func (f *failingKeyVault) Drop(ctx context.Context, ns cryptoDomain.Namespace) error {
	if f.dropErr != nil {
		return f.dropErr
	}
	return f.KeyVaultRepository.Drop(ctx, ns)
}

func (f *failingKeyVault) EnsureAltNameIndex(ctx context.Context, ns cryptoDomain.Namespace) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	return f.KeyVaultRepository.EnsureAltNameIndex(ctx, ns)
}

func TestVaultUseCase_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatesSingleDataKey", func(t *testing.T) {
		repo := memory.NewKeyVaultRepository()
		provider := newProvider(t, repo)
		uc := NewVaultUseCase(repo)

		require.NoError(t, uc.Reset(ctx, provider))

		count, err := uc.Count(ctx, testNamespace)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		dataKey, err := repo.GetByAltName(ctx, testNamespace, cryptoDomain.DataKeyAltName)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.LocalProvider, dataKey.Provider)
	})

	t.Run("Success_ResetReplacesDataKey", func(t *testing.T) {
		repo := memory.NewKeyVaultRepository()
		provider := newProvider(t, repo)
		uc := NewVaultUseCase(repo)

		require.NoError(t, uc.Reset(ctx, provider))
		first, err := repo.GetByAltName(ctx, testNamespace, "dek")
		require.NoError(t, err)

		ciphertext, err := provider.Encrypt(ctx, []byte("old"), cryptoDomain.DefaultAlgorithm, "dek")
		require.NoError(t, err)

		require.NoError(t, uc.Reset(ctx, provider))
		second, err := repo.GetByAltName(ctx, testNamespace, "dek")
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		count, err := uc.Count(ctx, testNamespace)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		_, err = provider.Decrypt(ctx, ciphertext)
		assert.ErrorIs(t, err, cryptoDomain.ErrDataKeyNotFound)
	})

	t.Run("Success_SecondDekIsRejectedByIndex", func(t *testing.T) {
		repo := memory.NewKeyVaultRepository()
		provider := newProvider(t, repo)
		require.NoError(t, NewVaultUseCase(repo).Reset(ctx, provider))

		_, err := provider.CreateDataKey(ctx, cryptoDomain.LocalProvider, []string{"dek"})
		assert.ErrorIs(t, err, cryptoDomain.ErrDataKeyAltNameTaken)
	})

	t.Run("Error_Drop", func(t *testing.T) {
		dropErr := errors.New("connection refused")
		repo := &failingKeyVault{KeyVaultRepository: memory.NewKeyVaultRepository(), dropErr: dropErr}

		err := NewVaultUseCase(repo).Reset(ctx, newProvider(t, repo))
		assert.ErrorIs(t, err, dropErr)
		assert.Contains(t, err.Error(), "failed to drop key vault csfle.green_vault")
	})

	t.Run("Error_Index", func(t *testing.T) {
		indexErr := errors.New("index build failed")
		repo := &failingKeyVault{KeyVaultRepository: memory.NewKeyVaultRepository(), indexErr: indexErr}

		err := NewVaultUseCase(repo).Reset(ctx, newProvider(t, repo))
		assert.ErrorIs(t, err, indexErr)

		count, countErr := repo.Count(ctx, testNamespace)
		require.NoError(t, countErr)
		assert.Zero(t, count)
	})

	t.Run("Error_CreateDataKey", func(t *testing.T) {
		repo := memory.NewKeyVaultRepository()
		uc := NewVaultUseCase(repo)
		provider := &stubProvider{ns: testNamespace, err: errors.New("boom")}

		err := uc.Reset(ctx, provider)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create data key in csfle.green_vault")
	})
}

type stubProvider struct {
	ns  cryptoDomain.Namespace
	err error
}

func (s *stubProvider) CreateDataKey(ctx context.Context, provider string, altNames []string) (uuid.UUID, error) {
	return uuid.Nil, s.err
}

func (s *stubProvider) Encrypt(
	ctx context.Context,
	plaintext []byte,
	alg cryptoDomain.Algorithm,
	keyAltName string,
) ([]byte, error) {
	return nil, s.err
}

func (s *stubProvider) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return nil, s.err
}

func (s *stubProvider) Namespace() cryptoDomain.Namespace {
	return s.ns
}
