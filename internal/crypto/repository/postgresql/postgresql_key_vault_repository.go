// Package postgresql implements the key vault on PostgreSQL. Each key vault
// namespace maps to the table named by its collection; the database part is
// implied by the connection.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/database"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

// ErrTooManyAltNames is returned when a data key carries more than the single
// alternate name the SQL schema can store.
var ErrTooManyAltNames = apperrors.Wrap(apperrors.ErrInvalidInput, "sql key vault stores at most one alternate name")

// PostgreSQLKeyVaultRepository implements KeyVaultRepository for PostgreSQL.
type PostgreSQLKeyVaultRepository struct {
	db *sql.DB
}

// Drop deletes every data key of the namespace. The table itself is owned by migrations.
func (p *PostgreSQLKeyVaultRepository) Drop(ctx context.Context, ns cryptoDomain.Namespace) error {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return err
	}

	if _, err := p.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return database.Classify(err, "failed to drop key vault")
	}
	return nil
}

// EnsureAltNameIndex creates the partial unique index on key_alt_name.
func (p *PostgreSQLKeyVaultRepository) EnsureAltNameIndex(ctx context.Context, ns cryptoDomain.Namespace) error {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %[1]s_key_alt_name_idx ON %[1]s (key_alt_name) WHERE key_alt_name IS NOT NULL",
		table,
	)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return database.Classify(err, "failed to create key alt name index")
	}
	return nil
}

// Create inserts a data key.
func (p *PostgreSQLKeyVaultRepository) Create(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	dataKey *cryptoDomain.DataKey,
) error {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return err
	}

	altName, err := singleAltName(dataKey)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (id, key_material, key_alt_name, provider, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = p.db.ExecContext(
		ctx,
		query,
		dataKey.ID,
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

// Get retrieves a data key by ID.
func (p *PostgreSQLKeyVaultRepository) Get(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	id uuid.UUID,
) (*cryptoDomain.DataKey, error) {
	return p.getBy(ctx, ns, "id", id)
}

// GetByAltName retrieves the data key tagged with altName.
func (p *PostgreSQLKeyVaultRepository) GetByAltName(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	altName string,
) (*cryptoDomain.DataKey, error) {
	return p.getBy(ctx, ns, "key_alt_name", altName)
}

// Count returns the number of data keys in the namespace.
func (p *PostgreSQLKeyVaultRepository) Count(ctx context.Context, ns cryptoDomain.Namespace) (int64, error) {
	table, err := database.Table(ns.Collection)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, database.Classify(err, "failed to count data keys")
	}
	return count, nil
}

func (p *PostgreSQLKeyVaultRepository) getBy(
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
			  WHERE ` + column + ` = $1`

	var dataKey cryptoDomain.DataKey
	var altName sql.NullString
	err = p.db.QueryRowContext(ctx, query, value).Scan(
		&dataKey.ID,
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

	if altName.Valid {
		dataKey.KeyAltNames = []string{altName.String}
	}
	return &dataKey, nil
}

func singleAltName(dataKey *cryptoDomain.DataKey) (sql.NullString, error) {
	switch len(dataKey.KeyAltNames) {
	case 0:
		return sql.NullString{}, nil
	case 1:
		return sql.NullString{String: dataKey.KeyAltNames[0], Valid: true}, nil
	default:
		return sql.NullString{}, ErrTooManyAltNames
	}
}

// NewPostgreSQLKeyVaultRepository creates a new PostgreSQL key vault repository.
func NewPostgreSQLKeyVaultRepository(db *sql.DB) *PostgreSQLKeyVaultRepository {
	return &PostgreSQLKeyVaultRepository{db: db}
}
