package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
	"github.com/allisson/bluegreen/internal/testutil"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestPostgreSQLSecretRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLSecretRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO secrets_blue (id, secret) VALUES ($1, $2)")).
		WithArgs("s1", []byte("c1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), secretsDomain.Blue, &secretsDomain.Secret{ID: "s1", Ciphertext: []byte("c1")})
	assert.NoError(t, err)
}

func TestPostgreSQLSecretRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_Duplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSecretRepository(db)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO secrets_green")).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, secretsDomain.Green, &secretsDomain.Secret{ID: "s1"})
		assert.ErrorIs(t, err, secretsDomain.ErrSecretExists)
	})

	t.Run("Error_InvalidColor", func(t *testing.T) {
		db, _ := newMockDB(t)
		repo := NewPostgreSQLSecretRepository(db)

		err := repo.Create(ctx, "RED", &secretsDomain.Secret{ID: "s1"})
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidColor)
	})
}

func TestPostgreSQLSecretRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSecretRepository(db)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, secret FROM secrets_blue WHERE id = $1")).
			WithArgs("s1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "secret"}).AddRow("s1", []byte("c1")))

		secret, err := repo.Get(ctx, secretsDomain.Blue, "s1")
		require.NoError(t, err)
		assert.Equal(t, &secretsDomain.Secret{ID: "s1", Ciphertext: []byte("c1")}, secret)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSecretRepository(db)
		mock.ExpectQuery(regexp.QuoteMeta("FROM secrets_blue")).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, secretsDomain.Blue, "missing")
		assert.ErrorIs(t, err, secretsDomain.ErrSecretNotFound)
	})
}

func TestPostgreSQLSecretRepository_Iterate(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT id, secret FROM secrets_green WHERE id > $1 ORDER BY id LIMIT $2")

	t.Run("Success_Pages", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSecretRepository(db)

		first := sqlmock.NewRows([]string{"id", "secret"})
		for i := range iterateBatchSize {
			first.AddRow(fmt.Sprintf("s%03d", i), []byte("c"))
		}
		mock.ExpectQuery(query).WithArgs("", iterateBatchSize).WillReturnRows(first)
		mock.ExpectQuery(query).
			WithArgs(fmt.Sprintf("s%03d", iterateBatchSize-1), iterateBatchSize).
			WillReturnRows(sqlmock.NewRows([]string{"id", "secret"}).AddRow("s100", []byte("c")))

		var ids []string
		err := repo.Iterate(ctx, secretsDomain.Green, func(s *secretsDomain.Secret) error {
			ids = append(ids, s.ID)
			return nil
		})
		require.NoError(t, err)
		assert.Len(t, ids, iterateBatchSize+1)
		assert.Equal(t, "s000", ids[0])
		assert.Equal(t, "s100", ids[iterateBatchSize])
	})

	t.Run("Error_StopsAtCallback", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSecretRepository(db)
		mock.ExpectQuery(query).
			WillReturnRows(sqlmock.NewRows([]string{"id", "secret"}).AddRow("a", []byte("c")).AddRow("b", []byte("c")))

		stop := errors.New("stop")
		var calls int
		err := repo.Iterate(ctx, secretsDomain.Green, func(*secretsDomain.Secret) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})
}

func TestPostgreSQLSecretRepository_CountAndDrop(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewPostgreSQLSecretRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM secrets_blue")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM secrets_blue")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	require.NoError(t, repo.Drop(ctx, secretsDomain.Blue))
	count, err := repo.Count(ctx, secretsDomain.Blue)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPostgreSQLMetadataRepository(t *testing.T) {
	ctx := context.Background()
	selectActive := regexp.QuoteMeta("SELECT active FROM metadata WHERE id = $1")

	t.Run("GetActive_Missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectActive).WithArgs("SecretService").WillReturnError(sql.ErrNoRows)

		_, err := NewPostgreSQLMetadataRepository(db).GetActive(ctx)
		assert.ErrorIs(t, err, secretsDomain.ErrMetadataMissing)
	})

	t.Run("GetActive_Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectActive).WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow("GREEN"))

		active, err := NewPostgreSQLMetadataRepository(db).GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, secretsDomain.Green, active)
	})

	t.Run("GetActive_Corrupt", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(selectActive).WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow("RED"))

		_, err := NewPostgreSQLMetadataRepository(db).GetActive(ctx)
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidColor)
	})

	t.Run("SetActive", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO metadata (id, active, updated_at)")).
			WithArgs("SecretService", "BLUE").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, NewPostgreSQLMetadataRepository(db).SetActive(ctx, secretsDomain.Blue))
	})
}

func TestPostgreSQLRepositories_Integration(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	ctx := context.Background()
	secrets := NewPostgreSQLSecretRepository(db)
	metadata := NewPostgreSQLMetadataRepository(db)

	for i := range iterateBatchSize + 5 {
		id := fmt.Sprintf("s%04d", i)
		require.NoError(t, secrets.Upsert(ctx, secretsDomain.Blue, &secretsDomain.Secret{ID: id, Ciphertext: []byte(id)}))
	}

	err := secrets.Iterate(ctx, secretsDomain.Blue, func(s *secretsDomain.Secret) error {
		return secrets.Create(ctx, secretsDomain.Green, s)
	})
	require.NoError(t, err)

	count, err := secrets.Count(ctx, secretsDomain.Green)
	require.NoError(t, err)
	assert.Equal(t, int64(iterateBatchSize+5), count)

	require.NoError(t, metadata.SetActive(ctx, secretsDomain.Green))
	require.NoError(t, metadata.SetActive(ctx, secretsDomain.Blue))
	active, err := metadata.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, secretsDomain.Blue, active)
}
