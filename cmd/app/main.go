// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/urfave/cli/v3"

	"github.com/allisson/bluegreen/cmd/app/commands"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	defer memguard.Purge()

	cmd := &cli.Command{
		Name:    "bluegreen",
		Usage:   "Blue/green dual-vault encrypted secret store",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "uri",
				Usage: "Store connection string, overrides MONGODB_URI or DB_CONNECTION_STRING",
			},
			&cli.StringFlag{
				Name:  "blue-key",
				Usage: "BLUE master key passphrase, overrides BLUE_MASTER_KEY",
			},
			&cli.StringFlag{
				Name:  "green-key",
				Usage: "GREEN master key passphrase, overrides GREEN_MASTER_KEY",
			},
		},
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		memguard.Purge()
		os.Exit(commands.ExitCode(err))
	}
}
