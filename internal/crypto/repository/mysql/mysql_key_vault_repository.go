// Package mysql implements the key vault on MySQL. Identifiers are stored as
// BINARY(16) and each namespace maps to the table named by its collection.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/database"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

// ErrTooManyAltNames is returned when a data key carries more than the single
// alternate name the SQL schema can store.
var ErrTooManyAltNames = apperrors.Wrap(apperrors.ErrInvalidInput, "sql key vault stores at most one alternate name")

// MySQLKeyVaultRepository implements KeyVaultRepository for MySQL.
type MySQLKeyVaultRepository struct {
	db *sql.DB
}

func (m *MySQLKeyVaultRepository) Drop(ctx context.Context, ns cryptoDomain.Namespace) error {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return err
	}

	if _, err := m.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return database.Classify(err, "failed to drop key vault")
	}
	return nil
}

// EnsureAltNameIndex creates the unique key_alt_name index unless it exists.
// MySQL has no CREATE INDEX IF NOT EXISTS, so the catalog is checked first.
func (m *MySQLKeyVaultRepository) EnsureAltNameIndex(ctx context.Context, ns cryptoDomain.Namespace) error {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return err
	}
	index := table + "_key_alt_name_idx"

	var count int64
	err = m.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM information_schema.statistics
		 WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?`,
		table,
		index,
	).Scan(&count)
	if err != nil {
		return database.Classify(err, "failed to inspect key vault indexes")
	}
	if count > 0 {
		return nil
	}

	if _, err := m.db.ExecContext(ctx, "CREATE UNIQUE INDEX "+index+" ON "+table+" (key_alt_name)"); err != nil {
		return database.Classify(err, "failed to create key alt name index")
	}
	return nil
}

func (m *MySQLKeyVaultRepository) Create(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	dataKey *cryptoDomain.DataKey,
) error {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return err
	}

	var altName sql.NullString
	switch len(dataKey.KeyAltNames) {
	case 0:
	case 1:
		altName = sql.NullString{String: dataKey.KeyAltNames[0], Valid: true}
	default:
		return ErrTooManyAltNames
	}

	id, err := dataKey.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal data key id")
	}

	query := `INSERT INTO ` + table + ` (id, key_material, key_alt_name, provider, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = m.db.ExecContext(
		ctx,
		query,
		id,
		dataKey.KeyMaterial,
		altName,
		dataKey.Provider,
		dataKey.Status,
		dataKey.CreatedAt,
		dataKey.UpdatedAt,
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			if strings.Contains(err.Error(), "key_alt_name") {
				return cryptoDomain.ErrDataKeyAltNameTaken
			}
			return cryptoDomain.ErrDataKeyExists
		}
		return database.Classify(err, "failed to create data key")
	}
	return nil
}

func (m *MySQLKeyVaultRepository) Get(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	id uuid.UUID,
) (*cryptoDomain.DataKey, error) {
	value, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal data key id")
	}
	return m.getBy(ctx, ns, "id", value)
}

func (m *MySQLKeyVaultRepository) GetByAltName(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	altName string,
) (*cryptoDomain.DataKey, error) {
	return m.getBy(ctx, ns, "key_alt_name", altName)
}

func (m *MySQLKeyVaultRepository) Count(ctx context.Context, ns cryptoDomain.Namespace) (int64, error) {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, database.Classify(err, "failed to count data keys")
	}
	return count, nil
}

func (m *MySQLKeyVaultRepository) getBy(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	column string,
	value any,
) (*cryptoDomain.DataKey, error) {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, key_material, key_alt_name, provider, status, created_at, updated_at
			  FROM ` + table + `
			  WHERE ` + column + ` = ?`

	var dataKey cryptoDomain.DataKey
	var id []byte
	var altName sql.NullString
	err = m.db.QueryRowContext(ctx, query, value).Scan(
		&id,
		&dataKey.KeyMaterial,
		&altName,
		&dataKey.Provider,
		&dataKey.Status,
		&dataKey.CreatedAt,
		&dataKey.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrDataKeyNotFound
		}
		return nil, database.Classify(err, "failed to get data key")
	}

	if err := dataKey.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal data key id")
	}
	if altName.Valid {
		dataKey.KeyAltNames = []string{altName.String}
	}
	return &dataKey, nil
}

// NewMySQLKeyVaultRepository creates a new MySQL key vault repository.
func NewMySQLKeyVaultRepository(db *sql.DB) *MySQLKeyVaultRepository {
	return &MySQLKeyVaultRepository{db: db}
}
