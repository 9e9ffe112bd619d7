package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/allisson/bluegreen/internal/app"
	"github.com/allisson/bluegreen/internal/config"
	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getVaultCommands()...)
	cmds = append(cmds, getKeyCommands()...)
	return cmds
}

// newContainer loads the configuration, applies the global flag overrides
// and validates the result.
func newContainer(cmd *cli.Command) (*app.Container, error) {
	cfg := config.Load()
	cfg.ApplyOverrides(cmd.String("uri"), cmd.String("blue-key"), cmd.String("green-key"))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.NewContainer(cfg), nil
}

// algorithmFlag is the --algorithm flag shared by write and rotate.
func algorithmFlag() *cli.StringFlag {
	names := make([]string, 0, len(cryptoDomain.Algorithms()))
	for _, alg := range cryptoDomain.Algorithms() {
		names = append(names, string(alg))
	}
	return &cli.StringFlag{
		Name:    "algorithm",
		Aliases: []string{"alg"},
		Usage:   "Encryption algorithm (" + strings.Join(names, ", ") + "), DEFAULT_ALGORITHM when omitted",
	}
}
