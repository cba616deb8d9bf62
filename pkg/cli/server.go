package cli

import (
	"context"
	"fmt"

	"github.com/guorui-lawtech/tmscan/pkg/auth"
	"github.com/guorui-lawtech/tmscan/pkg/logging"
	"github.com/guorui-lawtech/tmscan/pkg/server"
	"github.com/urfave/cli/v3"
)

const portFlagName = "port"

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:            "server",
		Aliases:         []string{"serve"},
		Usage:           "Start local HTTP API server",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  portFlagName,
				Usage: "Port on which the server will listen (default: config server.port)",
			},
		},
		Action: cmdStartServer,
	}
}

func cmdStartServer(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	if cmd.IsSet(portFlagName) {
		cfg.Config.Server.Port = int(cmd.Int(portFlagName))
		if err := cfg.Config.Validate(); err != nil {
			return err
		}
	}

	level := cfg.Config.LogLevel
	if cmd.Bool(debugFlagName) {
		level = "debug"
	}
	logger := logging.Setup(level, logging.FormatJSON)

	var keys server.HashLoader
	if cfg.Config.Server.RequireKey {
		keys = auth.NewKeyStore(cfg.Dir)
	}

	s, err := server.New(cfg.Config, cfg.Source, keys, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return s.Run(ctx)
}
