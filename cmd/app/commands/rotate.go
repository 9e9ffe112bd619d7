package commands

import (
	"context"
	"fmt"
	"log/slog"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
)

// MasterKeyDeriver turns a passphrase into a master key the way the
// configured store expects. *app.Container implements it.
type MasterKeyDeriver interface {
	DeriveMasterKey(ctx context.Context, passphrase string) (*cryptoDomain.MasterKey, error)
}

// RunRotate re-keys the inactive color with newPassphrase and copies the
// secrets of the active color into it. Activation is left to the operator.
func RunRotate(
	ctx context.Context,
	useCase secretsUseCase.SecretUseCase,
	deriver MasterKeyDeriver,
	logger *slog.Logger,
	streams IOTuple,
	newPassphrase string,
	algorithm string,
	defaultAlgorithm cryptoDomain.Algorithm,
) error {
	alg, err := parseAlgorithm(algorithm, defaultAlgorithm)
	if err != nil {
		return err
	}

	active, err := useCase.GetActive(ctx)
	if err != nil {
		return err
	}
	target := active.Flip()

	newKey, err := deriver.DeriveMasterKey(ctx, newPassphrase)
	if err != nil {
		return fmt.Errorf("failed to derive the new %s master key: %w", target, err)
	}

	_, _ = fmt.Fprintf(streams.Writer, "Rotating secrets in %s vault...\n", target)

	count, err := useCase.Rotate(ctx, newKey, alg)
	if err != nil {
		hintOnIntegrity(streams.ErrWriter, err, "Rotation failed - are you using the correct key?")
		return err
	}

	logger.Info("secrets rotated",
		slog.String("color", target.String()),
		slog.Int64("count", count),
		slog.String("algorithm", string(alg)),
	)
	_, _ = fmt.Fprintf(streams.Writer, "%d secrets rotated for %s\n", count, target)
	_, _ = fmt.Fprintf(streams.Writer, "Set %s_MASTER_KEY to the new passphrase, then run: activate %s\n", target, target)
	return nil
}
