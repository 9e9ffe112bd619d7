// Package domain defines the core domain models and types of the blue/green
// secret store: colors, secret documents, store naming and errors.
package domain

// Secret is one document of a color's secret collection.
type Secret struct {
	// ID is the caller supplied secret identifier.
	ID string
	// Ciphertext is the value encrypted by the color's encryption provider.
	Ciphertext []byte
	// Color is the color the secret was read from; unset on writes.
	Color Color
	// Plaintext holds the decrypted value in memory only; must be zeroed after use.
	Plaintext []byte `json:"-"`
}

// ColorInfo reports the state of one color.
type ColorInfo struct {
	Color    Color `json:"color"`
	Active   bool  `json:"active"`
	Secrets  int64 `json:"secrets"`
	DataKeys int64 `json:"data_keys"`
}

// Info is the read-only status report of the store.
type Info struct {
	Active Color       `json:"active"`
	Colors []ColorInfo `json:"colors"`
}
