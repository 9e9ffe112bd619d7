package domain

import (
	"github.com/allisson/bluegreen/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrSecretNotFound indicates the id is absent from the active color's collection.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrMetadataMissing indicates no color has been activated yet.
	ErrMetadataMissing = errors.Wrap(errors.ErrPrecondition, "no active color, run activate first")

	// ErrInvalidColor indicates a color name other than BLUE or GREEN.
	ErrInvalidColor = errors.Wrap(errors.ErrInvalidInput, "invalid color")

	// ErrInvalidSecretID indicates an empty secret identifier.
	ErrInvalidSecretID = errors.Wrap(errors.ErrInvalidInput, "invalid secret id")

	// ErrSecretExists indicates an insert hit an id that is already stored.
	ErrSecretExists = errors.Wrap(errors.ErrConflict, "secret already exists")
)
