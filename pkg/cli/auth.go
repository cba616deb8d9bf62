package cli

import (
	"context"
	"fmt"

	"github.com/guorui-lawtech/tmscan/pkg/auth"
	"github.com/guorui-lawtech/tmscan/pkg/server"
	"github.com/urfave/cli/v3"
)

const clearFlagName = "clear"

func authCmd() *cli.Command {
	return &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Generate the access key required by the API server",
		UsageText: `tmscan auth           # create or rotate the key
   tmscan auth --clear   # remove the key, locking the API`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  clearFlagName,
				Usage: "Remove the stored key",
			},
		},
		Action: cmdAuth,
	}
}

func cmdAuth(_ context.Context, cmd *cli.Command) error {
	store := auth.NewKeyStore(getConfig(cmd).Dir)
	w := writer(cmd)

	if cmd.Bool(clearFlagName) {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing key: %w", err)
		}
		fmt.Fprintln(w, "Access key removed")
		return nil
	}

	key, err := store.Provision()
	if err != nil {
		return fmt.Errorf("provisioning key: %w", err)
	}

	fmt.Fprintf(w, "Access key: %s\n", key)
	fmt.Fprintf(w, "Send it in the %s header. It is not stored and will not be shown again.\n", server.AccessKeyHeader)
	return nil
}
