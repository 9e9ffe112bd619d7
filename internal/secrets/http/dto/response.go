package dto

import (
	"encoding/base64"
	"unicode/utf8"

	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// WriteSecretResponse echoes the id a value was stored under.
type WriteSecretResponse struct {
	ID string `json:"id"`
}

// SecretResponse carries a decrypted value.
// SECURITY: contains plaintext; serve over TLS only.
type SecretResponse struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	Encoding string `json:"encoding"`
	Color    string `json:"color"`
}

// MapSecretToResponse returns UTF-8 values as text and anything else as
// base64. The caller still owns and must zero secret.Plaintext.
func MapSecretToResponse(secret *secretsDomain.Secret) SecretResponse {
	response := SecretResponse{
		ID:    secret.ID,
		Color: secret.Color.String(),
	}
	if utf8.Valid(secret.Plaintext) {
		response.Value = string(secret.Plaintext)
		response.Encoding = EncodingText
	} else {
		response.Value = base64.StdEncoding.EncodeToString(secret.Plaintext)
		response.Encoding = EncodingBase64
	}
	return response
}

// ColorInfoResponse reports one color.
type ColorInfoResponse struct {
	Color    string `json:"color"`
	Active   bool   `json:"active"`
	Secrets  int64  `json:"secrets"`
	DataKeys int64  `json:"data_keys"`
}

// InfoResponse is the body of GET /v1/info. Active is empty before the
// first activation.
type InfoResponse struct {
	Active string              `json:"active"`
	Colors []ColorInfoResponse `json:"colors"`
}

func MapInfoToResponse(info *secretsDomain.Info) InfoResponse {
	colors := make([]ColorInfoResponse, 0, len(info.Colors))
	for _, c := range info.Colors {
		colors = append(colors, ColorInfoResponse{
			Color:    c.Color.String(),
			Active:   c.Active,
			Secrets:  c.Secrets,
			DataKeys: c.DataKeys,
		})
	}
	return InfoResponse{Active: info.Active.String(), Colors: colors}
}
