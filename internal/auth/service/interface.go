// Package service issues and verifies the bearer token of the secret API.
//
// The server stores only an Argon2id hash of the token (API_TOKEN_HASH); the
// plain token is printed once by generate-api-token.
package service

// TokenService defines API token generation and verification.
type TokenService interface {
	// GenerateToken creates a random token and its Argon2id PHC hash.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token with Argon2id.
	HashToken(plainToken string) (string, error)

	// CompareToken reports whether plainToken matches tokenHash.
	CompareToken(plainToken string, tokenHash string) bool

	// Fingerprint returns the hex SHA-256 of plainToken, used to cache
	// verified tokens without holding them in memory.
	Fingerprint(plainToken string) string
}
