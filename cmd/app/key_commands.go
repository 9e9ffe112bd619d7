package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/bluegreen/cmd/app/commands"
	"github.com/allisson/bluegreen/internal/app"
	authService "github.com/allisson/bluegreen/internal/auth/service"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "rotate",
			Usage:     "Re-key the inactive color and copy the active secrets into it",
			ArgsUsage: "NEW_PASSPHRASE",
			Flags: []cli.Flag{
				algorithmFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				if cmd.NArg() != 1 {
					return fmt.Errorf("rotate takes exactly one NEW_PASSPHRASE argument")
				}
				return withSecretUseCase(ctx, cmd, func(c *app.Container, uc secretsUseCase.SecretUseCase) error {
					defaultAlg, err := c.DefaultAlgorithm()
					if err != nil {
						return err
					}
					return commands.RunRotate(
						ctx,
						uc,
						c,
						c.Logger(),
						commands.DefaultIO(),
						cmd.Args().First(),
						cmd.String("algorithm"),
						defaultAlg,
					)
				})
			},
		},
		{
			Name:  "generate-master-key",
			Usage: "Print a random 96-byte master key passphrase (base64)",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateMasterKey(commands.DefaultIO().Writer)
			},
		},
		{
			Name:  "generate-api-token",
			Usage: "Generate an API bearer token and its API_TOKEN_HASH",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateAPIToken(
					authService.NewTokenService(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
