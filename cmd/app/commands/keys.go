package commands

import (
	"encoding/base64"
	"fmt"
	"io"

	authService "github.com/allisson/bluegreen/internal/auth/service"
	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
)

// RunGenerateMasterKey prints 96 random bytes as base64, usable as a
// high-entropy BLUE_MASTER_KEY or GREEN_MASTER_KEY passphrase.
func RunGenerateMasterKey(writer io.Writer) error {
	key, err := cryptoService.GenerateMasterKey()
	if err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	_, _ = fmt.Fprintln(writer, base64.StdEncoding.EncodeToString(key))
	return nil
}

// RunGenerateAPIToken prints a new bearer token and the hash the server is
// configured with. The token is shown only once.
func RunGenerateAPIToken(tokenService authService.TokenService, writer io.Writer, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	token, hash, err := tokenService.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate api token: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]string{
			"token":      token,
			"token_hash": hash,
		})
	}

	_, _ = fmt.Fprintln(writer, "# Give the token to API clients and set the hash on the server.")
	_, _ = fmt.Fprintln(writer, "# The token cannot be recovered from the hash.")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "API_TOKEN=\"%s\"\n", token)
	_, _ = fmt.Fprintf(writer, "API_TOKEN_HASH=\"%s\"\n", hash)
	return nil
}
