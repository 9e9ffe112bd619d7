package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
)

// RunInit resets both vaults, drops every secret and activates activeVault.
func RunInit(
	ctx context.Context,
	useCase secretsUseCase.SecretUseCase,
	logger *slog.Logger,
	writer io.Writer,
	activeVault string,
) error {
	color, err := secretsDomain.ParseColor(activeVault)
	if err != nil {
		return err
	}

	if err := useCase.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize vaults: %w", err)
	}
	if err := useCase.Activate(ctx, color); err != nil {
		return fmt.Errorf("failed to activate %s: %w", color, err)
	}

	logger.Info("vaults initialized", slog.String("color", color.String()))
	_, _ = fmt.Fprintln(writer, "Vaults initialized!")
	_, _ = fmt.Fprintf(writer, "Active vault: %s\n", color)
	return nil
}

// RunActivate makes colorName the color reads are served from. The vault of
// that color is not checked.
func RunActivate(
	ctx context.Context,
	useCase secretsUseCase.SecretUseCase,
	logger *slog.Logger,
	writer io.Writer,
	colorName string,
) error {
	color, err := secretsDomain.ParseColor(colorName)
	if err != nil {
		return err
	}

	if err := useCase.Activate(ctx, color); err != nil {
		return fmt.Errorf("failed to activate %s: %w", color, err)
	}

	logger.Info("vault activated", slog.String("color", color.String()))
	_, _ = fmt.Fprintf(writer, "%s vault activated\n", color)
	return nil
}

// RunInfo prints the active color and the per-color counts as text or JSON.
func RunInfo(
	ctx context.Context,
	useCase secretsUseCase.SecretUseCase,
	writer io.Writer,
	format string,
) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	info, err := useCase.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get info: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, info)
	}

	active := info.Active.String()
	if active == "" {
		active = "none (run init or activate)"
	}
	_, _ = fmt.Fprintf(writer, "Active vault: %s\n", active)
	for _, ci := range info.Colors {
		marker := ""
		if ci.Active {
			marker = " (active)"
		}
		_, _ = fmt.Fprintf(writer, "%s: %d secrets, %d data keys%s\n", ci.Color, ci.Secrets, ci.DataKeys, marker)
	}
	return nil
}
