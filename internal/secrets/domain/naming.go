package domain

import (
	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

const (
	// DefaultKeyVaultDatabase holds both key vaults and the activation record.
	DefaultKeyVaultDatabase = "csfle"

	// DefaultSecretsDatabase holds both secret collections.
	DefaultSecretsDatabase = "secrets"

	// MetadataCollection holds the activation record.
	MetadataCollection = "metadata"

	// ActivationRecordID is the _id of the activation record.
	ActivationRecordID = "SecretService"
)

// KeyVaultNamespace returns "<database>.<color>_vault".
func KeyVaultNamespace(database string, c Color) cryptoDomain.Namespace {
	return cryptoDomain.Namespace{Database: database, Collection: KeyVaultCollection(c)}
}

// KeyVaultCollection returns "<color>_vault".
func KeyVaultCollection(c Color) string {
	return c.Slug() + "_vault"
}

// SecretsCollection returns "secrets_<color>".
func SecretsCollection(c Color) string {
	return "secrets_" + c.Slug()
}
