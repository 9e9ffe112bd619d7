package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

func TestSecretRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert replaces and keeps colors apart", func(t *testing.T) {
		repo := NewSecretRepository()
		require.NoError(t, repo.Upsert(ctx, secretsDomain.Blue, &secretsDomain.Secret{ID: "s1", Ciphertext: []byte("a")}))
		require.NoError(t, repo.Upsert(ctx, secretsDomain.Blue, &secretsDomain.Secret{ID: "s1", Ciphertext: []byte("b")}))

		got, err := repo.Get(ctx, secretsDomain.Blue, "s1")
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), got.Ciphertext)

		_, err = repo.Get(ctx, secretsDomain.Green, "s1")
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)

		count, err := repo.Count(ctx, secretsDomain.Blue)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("create rejects duplicates", func(t *testing.T) {
		repo := NewSecretRepository()
		secret := &secretsDomain.Secret{ID: "s1", Ciphertext: []byte("a")}
		require.NoError(t, repo.Create(ctx, secretsDomain.Green, secret))
		assert.ErrorIs(t, repo.Create(ctx, secretsDomain.Green, secret), secretsDomain.ErrSecretExists)
	})

	t.Run("iterate in insertion order and allow writes", func(t *testing.T) {
		repo := NewSecretRepository()
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, repo.Create(ctx, secretsDomain.Green, &secretsDomain.Secret{ID: id}))
		}

		var ids []string
		err := repo.Iterate(ctx, secretsDomain.Green, func(s *secretsDomain.Secret) error {
			ids = append(ids, s.ID)
			return repo.Create(ctx, secretsDomain.Blue, s)
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, ids)

		count, err := repo.Count(ctx, secretsDomain.Blue)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("iterate stops at first error", func(t *testing.T) {
		repo := NewSecretRepository()
		require.NoError(t, repo.Create(ctx, secretsDomain.Blue, &secretsDomain.Secret{ID: "1"}))
		require.NoError(t, repo.Create(ctx, secretsDomain.Blue, &secretsDomain.Secret{ID: "2"}))

		boom := errors.New("boom")
		calls := 0
		err := repo.Iterate(ctx, secretsDomain.Blue, func(*secretsDomain.Secret) error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("drop is idempotent", func(t *testing.T) {
		repo := NewSecretRepository()
		require.NoError(t, repo.Drop(ctx, secretsDomain.Blue))
		require.NoError(t, repo.Upsert(ctx, secretsDomain.Blue, &secretsDomain.Secret{ID: "s1"}))
		require.NoError(t, repo.Drop(ctx, secretsDomain.Blue))

		_, err := repo.Get(ctx, secretsDomain.Blue, "s1")
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})
}

func TestMetadataRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMetadataRepository()

	_, err := repo.GetActive(ctx)
	assert.ErrorIs(t, err, secretsDomain.ErrMetadataMissing)

	require.NoError(t, repo.SetActive(ctx, secretsDomain.Green))
	active, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, secretsDomain.Green, active)

	require.NoError(t, repo.SetActive(ctx, secretsDomain.Blue))
	active, err = repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, secretsDomain.Blue, active)
}
