package database

import (
	"fmt"

	apperrors "github.com/allisson/bluegreen/internal/errors"
)

// ErrInvalidIdentifier indicates a table name outside [a-z0-9_].
var ErrInvalidIdentifier = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid sql identifier")

// Table returns name when it is safe to interpolate into a statement as a
// table identifier. Table names are derived from colors, never from user input.
func Table(name string) (string, error) {
	if name == "" || len(name) > 63 {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
		}
	}
	return name, nil
}
