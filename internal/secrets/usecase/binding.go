package usecase

import (
	"fmt"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// ProviderFactory binds a master key to the key vault of a color.
type ProviderFactory func(color secretsDomain.Color, masterKey *cryptoDomain.MasterKey) cryptoService.EncryptionProvider

// Binding is the master key and encryption provider of one color.
type Binding struct {
	Color     secretsDomain.Color
	MasterKey *cryptoDomain.MasterKey
	Provider  cryptoService.EncryptionProvider
}

// Bindings holds the binding of both colors. It is never modified after
// construction; Rebind returns a new value.
type Bindings struct {
	blue    Binding
	green   Binding
	factory ProviderFactory
}

// NewBindings builds the binding of both colors. Both master keys are required.
func NewBindings(blueKey, greenKey *cryptoDomain.MasterKey, factory ProviderFactory) (*Bindings, error) {
	if blueKey == nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrMasterKeyMissing, "color %s", secretsDomain.Blue)
	}
	if greenKey == nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrMasterKeyMissing, "color %s", secretsDomain.Green)
	}

	return &Bindings{
		blue:    bind(secretsDomain.Blue, blueKey, factory),
		green:   bind(secretsDomain.Green, greenKey, factory),
		factory: factory,
	}, nil
}

// Get returns the binding of color. Both colors are always bound, so an
// invalid color is a programming error and panics.
func (b *Bindings) Get(color secretsDomain.Color) Binding {
	switch color {
	case secretsDomain.Blue:
		return b.blue
	case secretsDomain.Green:
		return b.green
	default:
		panic(fmt.Sprintf("secrets: no binding for color %q", string(color)))
	}
}

// Rebind returns a copy of b with color bound to masterKey through a new provider.
func (b *Bindings) Rebind(color secretsDomain.Color, masterKey *cryptoDomain.MasterKey) (*Bindings, error) {
	if masterKey == nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrMasterKeyMissing, "color %s", color)
	}

	next := *b
	switch color {
	case secretsDomain.Blue:
		next.blue = bind(color, masterKey, b.factory)
	case secretsDomain.Green:
		next.green = bind(color, masterKey, b.factory)
	default:
		panic(fmt.Sprintf("secrets: no binding for color %q", string(color)))
	}
	return &next, nil
}

func bind(color secretsDomain.Color, masterKey *cryptoDomain.MasterKey, factory ProviderFactory) Binding {
	return Binding{
		Color:     color,
		MasterKey: masterKey,
		Provider:  factory(color, masterKey),
	}
}

// NewLocalProviderFactory returns a factory creating local encryption providers
// over the key vaults "<keyVaultDatabase>.<color>_vault".
func NewLocalProviderFactory(
	keyVaultRepo cryptoService.KeyVaultRepository,
	keyVaultDatabase string,
	keyManager cryptoService.KeyManager,
	aeadManager cryptoService.AEADManager,
) ProviderFactory {
	return func(color secretsDomain.Color, masterKey *cryptoDomain.MasterKey) cryptoService.EncryptionProvider {
		return cryptoService.NewLocalEncryptionProvider(
			keyVaultRepo,
			secretsDomain.KeyVaultNamespace(keyVaultDatabase, color),
			masterKey,
			keyManager,
			aeadManager,
		)
	}
}
