package commands

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/jellydator/validation"
	"go.mongodb.org/mongo-driver/v2/bson"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
	customValidation "github.com/allisson/bluegreen/internal/validation"
)

// RunRead prints the plaintext of secretID read from the active color.
func RunRead(
	ctx context.Context,
	useCase secretsUseCase.SecretUseCase,
	streams IOTuple,
	secretID string,
) error {
	active, err := useCase.GetActive(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(streams.Writer, "Reading secret %s from %s...\n", secretID, active)

	secret, err := useCase.Read(ctx, secretID)
	if err != nil {
		hintOnIntegrity(streams.ErrWriter, err, "Read failed - are you using the correct key?")
		return err
	}
	defer cryptoDomain.Zero(secret.Plaintext)

	_, _ = fmt.Fprintf(streams.Writer, "%s=%s\n", secret.ID, secret.Plaintext)
	return nil
}

// RunWrite encrypts value under both colors. An ObjectID hex id is generated
// when secretID is empty.
func RunWrite(
	ctx context.Context,
	useCase secretsUseCase.SecretUseCase,
	logger *slog.Logger,
	streams IOTuple,
	secretID string,
	value string,
	algorithm string,
	defaultAlgorithm cryptoDomain.Algorithm,
) error {
	alg, err := parseAlgorithm(algorithm, defaultAlgorithm)
	if err != nil {
		return err
	}
	if secretID == "" {
		secretID = bson.NewObjectID().Hex()
	}
	if err := validation.Validate(secretID, customValidation.SecretID); err != nil {
		return customValidation.WrapValidationError(err)
	}

	_, _ = fmt.Fprintln(streams.Writer, "Writing secret to BLUE & GREEN vaults...")

	plaintext := []byte(value)
	defer cryptoDomain.Zero(plaintext)

	if err := useCase.Write(ctx, secretID, plaintext, alg); err != nil {
		hintOnIntegrity(streams.ErrWriter, err, "Write failed - are you using the correct keys?")
		return err
	}

	logger.Info("secret written", slog.String("secret_id", secretID), slog.String("algorithm", string(alg)))
	_, _ = fmt.Fprintf(streams.Writer, "Secret written (id: %s)\n", secretID)
	return nil
}
