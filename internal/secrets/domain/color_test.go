package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColor_Flip(t *testing.T) {
	assert.Equal(t, Green, Blue.Flip())
	assert.Equal(t, Blue, Green.Flip())

	for _, c := range Colors {
		assert.Equal(t, c, c.Flip().Flip())
		assert.NotEqual(t, c, c.Flip())
		assert.True(t, c.Flip().Valid())
	}

	assert.Panics(t, func() { Color("RED").Flip() })
	assert.Panics(t, func() { Color("").Flip() })
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  Color
	}{
		{"BLUE", Blue},
		{"blue", Blue},
		{" Green ", Green},
		{"GREEN", Green},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "red", "BLUEGREEN"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseColor(bad)
			assert.ErrorIs(t, err, ErrInvalidColor)
		})
	}
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "blue_vault", KeyVaultCollection(Blue))
	assert.Equal(t, "green_vault", KeyVaultCollection(Green))
	assert.Equal(t, "secrets_blue", SecretsCollection(Blue))
	assert.Equal(t, "secrets_green", SecretsCollection(Green))
	assert.Equal(t, "csfle.green_vault", KeyVaultNamespace(DefaultKeyVaultDatabase, Green).String())
}
