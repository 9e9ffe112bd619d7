// Package postgresql stores secret documents and the activation record in
// PostgreSQL. Each color owns the table secrets_<color>.
package postgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/bluegreen/internal/database"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// iterateBatchSize is the keyset page size of Iterate.
const iterateBatchSize = 100

// PostgreSQLSecretRepository implements SecretRepository for PostgreSQL.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

func secretsTable(color secretsDomain.Color) (string, error) {
	if !color.Valid() {
		return "", secretsDomain.ErrInvalidColor
	}
	return database.Table(secretsDomain.SecretsCollection(color))
}

func (p *PostgreSQLSecretRepository) Upsert(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (id, secret) VALUES ($1, $2)
			  ON CONFLICT (id) DO UPDATE SET secret = EXCLUDED.secret`

	if _, err := p.db.ExecContext(ctx, query, secret.ID, secret.Ciphertext); err != nil {
		return database.Classify(err, "failed to upsert secret")
	}
	return nil
}

func (p *PostgreSQLSecretRepository) Create(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (id, secret) VALUES ($1, $2)`

	if _, err := p.db.ExecContext(ctx, query, secret.ID, secret.Ciphertext); err != nil {
		if database.IsDuplicateKey(err) {
			return secretsDomain.ErrSecretExists
		}
		return database.Classify(err, "failed to create secret")
	}
	return nil
}

func (p *PostgreSQLSecretRepository) Get(ctx context.Context, color secretsDomain.Color, id string) (*secretsDomain.Secret, error) {
	table, err := secretsTable(color)
	if err != nil {
		return nil, err
	}

	var secret secretsDomain.Secret
	err = p.db.QueryRowContext(ctx, `SELECT id, secret FROM `+table+` WHERE id = $1`, id).
		Scan(&secret.ID, &secret.Ciphertext)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, database.Classify(err, "failed to get secret")
	}
	return &secret, nil
}

// Iterate walks the table in id order, one keyset page at a time. No rows are
// held open while fn runs, so fn may write to the same connection pool.
func (p *PostgreSQLSecretRepository) Iterate(
	ctx context.Context,
	color secretsDomain.Color,
	fn func(*secretsDomain.Secret) error,
) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	query := `SELECT id, secret FROM ` + table + ` WHERE id > $1 ORDER BY id LIMIT $2`

	after := ""
	for {
		page, err := p.page(ctx, query, after)
		if err != nil {
			return err
		}

		for _, secret := range page {
			if err := fn(secret); err != nil {
				return err
			}
		}

		if len(page) < iterateBatchSize {
			return nil
		}
		after = page[len(page)-1].ID
	}
}

func (p *PostgreSQLSecretRepository) page(ctx context.Context, query, after string) (page []*secretsDomain.Secret, err error) {
	rows, err := p.db.QueryContext(ctx, query, after, iterateBatchSize)
	if err != nil {
		return nil, database.Classify(err, "failed to list secrets")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = apperrors.Wrap(closeErr, "failed to close rows")
		}
	}()

	for rows.Next() {
		var secret secretsDomain.Secret
		if err := rows.Scan(&secret.ID, &secret.Ciphertext); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan secret")
		}
		page = append(page, &secret)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(err, "failed to iterate secrets")
	}
	return page, nil
}

func (p *PostgreSQLSecretRepository) Count(ctx context.Context, color secretsDomain.Color) (int64, error) {
	table, err := secretsTable(color)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, database.Classify(err, "failed to count secrets")
	}
	return count, nil
}

func (p *PostgreSQLSecretRepository) Drop(ctx context.Context, color secretsDomain.Color) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	if _, err := p.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return database.Classify(err, "failed to drop secrets")
	}
	return nil
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL secret repository.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}

// PostgreSQLMetadataRepository keeps the activation record in the metadata table.
type PostgreSQLMetadataRepository struct {
	db *sql.DB
}

func (p *PostgreSQLMetadataRepository) GetActive(ctx context.Context) (secretsDomain.Color, error) {
	var active string
	err := p.db.QueryRowContext(ctx, `SELECT active FROM metadata WHERE id = $1`, secretsDomain.ActivationRecordID).
		Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", secretsDomain.ErrMetadataMissing
		}
		return "", database.Classify(err, "failed to get activation record")
	}

	color, err := secretsDomain.ParseColor(active)
	if err != nil {
		return "", apperrors.Wrapf(err, "activation record holds %q", active)
	}
	return color, nil
}

func (p *PostgreSQLMetadataRepository) SetActive(ctx context.Context, color secretsDomain.Color) error {
	query := `INSERT INTO metadata (id, active, updated_at) VALUES ($1, $2, NOW())
			  ON CONFLICT (id) DO UPDATE SET active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`

	if _, err := p.db.ExecContext(ctx, query, secretsDomain.ActivationRecordID, color.String()); err != nil {
		return database.Classify(err, "failed to set activation record")
	}
	return nil
}

// NewPostgreSQLMetadataRepository creates a new PostgreSQL metadata repository.
func NewPostgreSQLMetadataRepository(db *sql.DB) *PostgreSQLMetadataRepository {
	return &PostgreSQLMetadataRepository{db: db}
}
