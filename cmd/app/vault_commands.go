package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/bluegreen/cmd/app/commands"
	"github.com/allisson/bluegreen/internal/app"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
)

// withSecretUseCase builds the container and the secret use case, runs fn
// and releases the container.
func withSecretUseCase(
	ctx context.Context,
	cmd *cli.Command,
	fn func(container *app.Container, useCase secretsUseCase.SecretUseCase) error,
) error {
	container, err := newContainer(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = container.Shutdown(ctx) }()

	useCase, err := container.SecretUseCase(ctx)
	if err != nil {
		return err
	}
	return fn(container, useCase)
}

func getVaultCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init",
			Usage: "Reset both vaults, drop every secret and activate a color",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "active-vault",
					Value: "GREEN",
					Usage: "Color to activate after initialization (BLUE or GREEN)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withSecretUseCase(ctx, cmd, func(c *app.Container, uc secretsUseCase.SecretUseCase) error {
					return commands.RunInit(ctx, uc, c.Logger(), commands.DefaultIO().Writer, cmd.String("active-vault"))
				})
			},
		},
		{
			Name:      "activate",
			Usage:     "Serve reads from a color",
			ArgsUsage: "COLOR",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.NArg() != 1 {
					return fmt.Errorf("activate takes exactly one COLOR argument")
				}
				return withSecretUseCase(ctx, cmd, func(c *app.Container, uc secretsUseCase.SecretUseCase) error {
					return commands.RunActivate(ctx, uc, c.Logger(), commands.DefaultIO().Writer, cmd.Args().First())
				})
			},
		},
		{
			Name:  "info",
			Usage: "Show the active color and per-color counts",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withSecretUseCase(ctx, cmd, func(c *app.Container, uc secretsUseCase.SecretUseCase) error {
					return commands.RunInfo(ctx, uc, commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:      "read",
			Usage:     "Print a secret read from the active color",
			ArgsUsage: "ID",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.NArg() != 1 {
					return fmt.Errorf("read takes exactly one ID argument")
				}
				return withSecretUseCase(ctx, cmd, func(c *app.Container, uc secretsUseCase.SecretUseCase) error {
					return commands.RunRead(ctx, uc, commands.DefaultIO(), cmd.Args().First())
				})
			},
		},
		{
			Name:      "write",
			Usage:     "Encrypt a secret into both colors",
			ArgsUsage: "SECRET",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "secret-id",
					Aliases: []string{"i"},
					Usage:   "Secret id, generated when omitted",
				},
				algorithmFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.NArg() != 1 {
					return fmt.Errorf("write takes exactly one SECRET argument")
				}
				return withSecretUseCase(ctx, cmd, func(c *app.Container, uc secretsUseCase.SecretUseCase) error {
					defaultAlg, err := c.DefaultAlgorithm()
					if err != nil {
						return err
					}
					return commands.RunWrite(
						ctx,
						uc,
						c.Logger(),
						commands.DefaultIO(),
						cmd.String("secret-id"),
						cmd.Args().First(),
						cmd.String("algorithm"),
						defaultAlg,
					)
				})
			},
		},
	}
}
