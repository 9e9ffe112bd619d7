// Package mysql stores secret documents and the activation record in MySQL.
package mysql

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

// MySQLSecretRepository implements SecretRepository for MySQL.
type MySQLSecretRepository struct {
	db *sql.DB
}

func secretsTable(color secretsDomain.Color) (string, error) {
	if !color.Valid() {
		return "", secretsDomain.ErrInvalidColor
	}
	return database.Table(secretsDomain.SecretsCollection(color))
}

func (m *MySQLSecretRepository) Upsert(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (id, secret) VALUES (?, ?)
			  ON DUPLICATE KEY UPDATE secret = VALUES(secret)`

	if _, err := m.db.ExecContext(ctx, query, secret.ID, secret.Ciphertext); err != nil {
		return database.Classify(err, "failed to upsert secret")
	}
	return nil
}

func (m *MySQLSecretRepository) Create(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (id, secret) VALUES (?, ?)`

	if _, err := m.db.ExecContext(ctx, query, secret.ID, secret.Ciphertext); err != nil {
		if database.IsDuplicateKey(err) {
			return secretsDomain.ErrSecretExists
		}
		return database.Classify(err, "failed to create secret")
	}
	return nil
}

func (m *MySQLSecretRepository) Get(ctx context.Context, color secretsDomain.Color, id string) (*secretsDomain.Secret, error) {
	table, err := secretsTable(color)
	if err != nil {
		return nil, err
	}

	var secret secretsDomain.Secret
	err = m.db.QueryRowContext(ctx, `SELECT id, secret FROM `+table+` WHERE id = ?`, id).
		Scan(&secret.ID, &secret.Ciphertext)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, secretsDomain.ErrSecretNotFound
		}
		return nil, database.Classify(err, "failed to get secret")
	}
	return &secret, nil
}

// Iterate pages through the table in id order so no result set is open while
// fn runs.
func (m *MySQLSecretRepository) Iterate(
	ctx context.Context,
	color secretsDomain.Color,
	fn func(*secretsDomain.Secret) error,
) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	query := `SELECT id, secret FROM ` + table + ` WHERE id > ? ORDER BY id LIMIT ?`

	after := ""
	for {
		page, err := m.page(ctx, query, after)
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

func (m *MySQLSecretRepository) page(ctx context.Context, query, after string) (page []*secretsDomain.Secret, err error) {
	rows, err := m.db.QueryContext(ctx, query, after, iterateBatchSize)
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

func (m *MySQLSecretRepository) Count(ctx context.Context, color secretsDomain.Color) (int64, error) {
	table, err := secretsTable(color)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, database.Classify(err, "failed to count secrets")
	}
	return count, nil
}

func (m *MySQLSecretRepository) Drop(ctx context.Context, color secretsDomain.Color) error {
	table, err := secretsTable(color)
	if err != nil {
		return err
	}

	if _, err := m.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return database.Classify(err, "failed to drop secrets")
	}
	return nil
}

// NewMySQLSecretRepository creates a new MySQL secret repository.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}

// MySQLMetadataRepository keeps the activation record in the metadata table.
type MySQLMetadataRepository struct {
	db *sql.DB
}

func (m *MySQLMetadataRepository) GetActive(ctx context.Context) (secretsDomain.Color, error) {
	var active string
	err := m.db.QueryRowContext(ctx, `SELECT active FROM metadata WHERE id = ?`, secretsDomain.ActivationRecordID).
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

func (m *MySQLMetadataRepository) SetActive(ctx context.Context, color secretsDomain.Color) error {
	query := `INSERT INTO metadata (id, active, updated_at) VALUES (?, ?, UTC_TIMESTAMP(6))
			  ON DUPLICATE KEY UPDATE active = VALUES(active), updated_at = VALUES(updated_at)`

	if _, err := m.db.ExecContext(ctx, query, secretsDomain.ActivationRecordID, color.String()); err != nil {
		return database.Classify(err, "failed to set activation record")
	}
	return nil
}

// NewMySQLMetadataRepository creates a new MySQL metadata repository.
func NewMySQLMetadataRepository(db *sql.DB) *MySQLMetadataRepository {
	return &MySQLMetadataRepository{db: db}
}
