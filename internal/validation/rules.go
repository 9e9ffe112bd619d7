// Package validation provides jellydator rules shared by the CLI and HTTP inputs.
package validation

import (
	"encoding/base64"
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	apperrors "github.com/allisson/bluegreen/internal/errors"
)

// MaxSecretIDLength matches the id column width of the SQL secrets tables.
const MaxSecretIDLength = 255

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretID rejects ids that are too long, padded with whitespace or carry
// control characters. Emptiness is left to validation.Required.
var SecretID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_secret_id_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if len(s) > MaxSecretIDLength {
		return validation.NewError("validation_secret_id_length", "must be at most 255 bytes")
	}
	if strings.TrimSpace(s) != s {
		return validation.NewError("validation_no_whitespace", "must not have leading or trailing whitespace")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return validation.NewError("validation_secret_id_control", "must not contain control characters")
		}
	}
	return nil
})

// Algorithm accepts any supported algorithm name; empty selects the default.
var Algorithm = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_algorithm_type", "must be a string")
	}
	if _, err := cryptoDomain.ParseAlgorithm(s); err != nil {
		return validation.NewError("validation_algorithm", "must be a supported algorithm")
	}
	return nil
})

// Base64 accepts standard padded base64, used for binary secret values.
var Base64 = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_type", "must be a string")
	}
	if s == "" {
		return nil
	}
	if _, err := base64.StdEncoding.DecodeString(s); err != nil {
		return validation.NewError("validation_base64", "must be valid base64-encoded data")
	}
	return nil
})
