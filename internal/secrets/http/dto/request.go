// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/bluegreen/internal/validation"
)

// Value encodings accepted and returned by the API.
const (
	EncodingText   = "text"
	EncodingBase64 = "base64"
)

// WriteSecretRequest is the body of PUT /v1/secrets/:id and POST /v1/secrets.
type WriteSecretRequest struct {
	Value string `json:"value"`
	// Encoding is "text" (default) or "base64" for binary values.
	Encoding string `json:"encoding,omitempty"`
	// Algorithm overrides the configured default algorithm.
	Algorithm string `json:"algorithm,omitempty"`
}

// Validate checks the request fields.
func (r *WriteSecretRequest) Validate() error {
	valueRules := []validation.Rule{validation.Required}
	if r.Encoding == EncodingBase64 {
		valueRules = append(valueRules, customValidation.Base64)
	}

	return validation.ValidateStruct(r,
		validation.Field(&r.Value, valueRules...),
		validation.Field(&r.Encoding, validation.In(EncodingText, EncodingBase64)),
		validation.Field(&r.Algorithm, customValidation.Algorithm),
	)
}

// Plaintext returns the decoded value. Call after Validate.
func (r *WriteSecretRequest) Plaintext() ([]byte, error) {
	if r.Encoding == EncodingBase64 {
		return base64.StdEncoding.DecodeString(r.Value)
	}
	return []byte(r.Value), nil
}
