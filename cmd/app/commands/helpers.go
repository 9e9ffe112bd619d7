// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/bluegreen/internal/app"
	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitIntegrity = 1
	ExitFailure   = 2
)

// IOTuple holds the streams of a command, allowing for testing.
type IOTuple struct {
	Reader    io.Reader
	Writer    io.Writer
	ErrWriter io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin, os.Stdout and os.Stderr.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader:    os.Stdin,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
	}
}

// ExitCode maps a command error to the process exit code. A decryption
// failure, usually a wrong master key, exits with 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case apperrors.Is(err, apperrors.ErrIntegrity):
		return ExitIntegrity
	default:
		return ExitFailure
	}
}

// parseAlgorithm returns fallback when name is empty.
func parseAlgorithm(name string, fallback cryptoDomain.Algorithm) (cryptoDomain.Algorithm, error) {
	if name == "" {
		return fallback, nil
	}
	return cryptoDomain.ParseAlgorithm(name)
}

// hintOnIntegrity prints hint to w, the error stream, when err is a decryption failure.
func hintOnIntegrity(w io.Writer, err error, hint string) {
	if apperrors.Is(err, apperrors.ErrIntegrity) {
		_, _ = fmt.Fprintln(w, hint)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}
