package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/database"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

var blueVault = cryptoDomain.Namespace{Database: "csfle", Collection: "blue_vault"}

func newMockRepository(t *testing.T) (*PostgreSQLKeyVaultRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgreSQLKeyVaultRepository(db), mock
}

func testDataKey() *cryptoDomain.DataKey {
	now := time.Now().UTC()
	return &cryptoDomain.DataKey{
		ID:          uuid.Must(uuid.NewV7()),
		KeyMaterial: []byte("wrapped-key-material"),
		KeyAltNames: []string{cryptoDomain.DataKeyAltName},
		Provider:    cryptoDomain.LocalProvider,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPostgreSQLKeyVaultRepository_Drop(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blue_vault")).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Drop(ctx, blueVault))
	})

	t.Run("Error_InvalidTable", func(t *testing.T) {
		repo, _ := newMockRepository(t)

		err := repo.Drop(ctx, cryptoDomain.Namespace{Database: "csfle", Collection: "blue_vault; --"})
		assert.ErrorIs(t, err, database.ErrInvalidIdentifier)
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blue_vault")).WillReturnError(&net.OpError{
			Op:  "dial",
			Net: "tcp",
			Err: errors.New("connection refused"),
		})

		err := repo.Drop(ctx, blueVault)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	})
}

func TestPostgreSQLKeyVaultRepository_EnsureAltNameIndex(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec(regexp.QuoteMeta(
		"CREATE UNIQUE INDEX IF NOT EXISTS blue_vault_key_alt_name_idx ON blue_vault (key_alt_name) WHERE key_alt_name IS NOT NULL",
	)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.EnsureAltNameIndex(context.Background(), blueVault))
}

func TestPostgreSQLKeyVaultRepository_Create(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta("INSERT INTO blue_vault (id, key_material, key_alt_name, provider, status, created_at, updated_at)")

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		dataKey := testDataKey()
		mock.ExpectExec(insert).
			WithArgs(sqlmock.AnyArg(), dataKey.KeyMaterial, "dek", "local", int64(0), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, blueVault, dataKey))
	})

	t.Run("Error_AltNameTaken", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(insert).WillReturnError(&pq.Error{
			Code:    "23505",
			Message: `duplicate key value violates unique constraint "blue_vault_key_alt_name_idx"`,
		})

		err := repo.Create(ctx, blueVault, testDataKey())
		assert.ErrorIs(t, err, cryptoDomain.ErrDataKeyAltNameTaken)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Error_DuplicateID", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(insert).WillReturnError(&pq.Error{
			Code:    "23505",
			Message: `duplicate key value violates unique constraint "blue_vault_pkey"`,
		})

		err := repo.Create(ctx, blueVault, testDataKey())
		assert.ErrorIs(t, err, cryptoDomain.ErrDataKeyExists)
	})

	t.Run("Error_TooManyAltNames", func(t *testing.T) {
		repo, _ := newMockRepository(t)
		dataKey := testDataKey()
		dataKey.KeyAltNames = []string{"a", "b"}

		err := repo.Create(ctx, blueVault, dataKey)
		assert.ErrorIs(t, err, ErrTooManyAltNames)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPostgreSQLKeyVaultRepository_Get(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "key_material", "key_alt_name", "provider", "status", "created_at", "updated_at"}

	t.Run("Success_ByAltName", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		dataKey := testDataKey()
		mock.ExpectQuery(regexp.QuoteMeta("FROM blue_vault")).
			WithArgs("dek").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				dataKey.ID.String(), dataKey.KeyMaterial, "dek", "local", int64(0), dataKey.CreatedAt, dataKey.UpdatedAt,
			))

		got, err := repo.GetByAltName(ctx, blueVault, "dek")
		require.NoError(t, err)
		assert.Equal(t, dataKey.ID, got.ID)
		assert.Equal(t, dataKey.KeyMaterial, got.KeyMaterial)
		assert.Equal(t, []string{"dek"}, got.KeyAltNames)
		assert.Equal(t, "local", got.Provider)
	})

	t.Run("Success_ByIDWithoutAltName", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		dataKey := testDataKey()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				dataKey.ID.String(), dataKey.KeyMaterial, nil, "local", int64(0), dataKey.CreatedAt, dataKey.UpdatedAt,
			))

		got, err := repo.Get(ctx, blueVault, dataKey.ID)
		require.NoError(t, err)
		assert.Equal(t, dataKey.ID, got.ID)
		assert.Empty(t, got.KeyAltNames)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM blue_vault")).WillReturnError(sql.ErrNoRows)

		got, err := repo.Get(ctx, blueVault, uuid.New())
		assert.Nil(t, got)
		assert.ErrorIs(t, err, cryptoDomain.ErrDataKeyNotFound)
	})

	t.Run("Error_Query", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		cause := errors.New("relation does not exist")
		mock.ExpectQuery(regexp.QuoteMeta("FROM blue_vault")).WillReturnError(cause)

		_, err := repo.GetByAltName(ctx, blueVault, "dek")
		assert.ErrorIs(t, err, cause)
	})
}

func TestPostgreSQLKeyVaultRepository_Count(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM blue_vault")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	count, err := repo.Count(context.Background(), blueVault)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
