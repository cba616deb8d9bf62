package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/guorui-lawtech/tmscan/pkg/config"
	"github.com/guorui-lawtech/tmscan/pkg/data"
	"github.com/urfave/cli/v3"
)

const (
	useFlagName = "use"
	yesFlagName = "yes"
)

func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:            "catalog",
		Usage:           "Manage the local registration catalogue",
		HideHelpCommand: true,
		Commands: []*cli.Command{
			{
				Name:    "import",
				Aliases: []string{"i"},
				Usage:   "Import registrations from a YAML seed file",
				UsageText: `tmscan catalog import --file seed.yaml --use   # import and search the catalogue from now on
   tmscan catalog import                         # import the built-in demonstration records`,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  fileFlagName,
						Usage: "Seed file path (default: built-in demonstration records)",
					},
					&cli.BoolFlag{
						Name:  useFlagName,
						Usage: "Point the config at the catalogue",
					},
				},
				Action: cmdCatalogImport,
			},
			{
				Name:   "state",
				Usage:  "Print catalogue record counts",
				Action: cmdCatalogState,
			},
			{
				Name:  "reset",
				Usage: "Delete all catalogue records and start fresh",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  yesFlagName,
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: cmdCatalogReset,
			},
		},
	}
}

func cmdCatalogImport(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	records := data.MockRecords()
	if p := cmd.String(fileFlagName); p != "" {
		list, err := data.LoadRecords(p)
		if err != nil {
			return fmt.Errorf("loading seed file: %w", err)
		}
		records = list
	}

	path := cfg.catalogPath()
	if err := data.Init(path); err != nil {
		return fmt.Errorf("initializing catalog: %w", err)
	}

	db, err := data.GetDB(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer db.Close()

	if err := data.SaveRecords(db, records); err != nil {
		return fmt.Errorf("saving records: %w", err)
	}
	slog.Info("catalog imported", "path", path, "records", len(records))

	if cmd.Bool(useFlagName) && cfg.Config.Catalog.Path != path {
		cfg.Config.Catalog.Path = path
		if err := config.Save(cfg.Dir, cfg.Config); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		slog.Info("config now uses the catalog", "path", path)
	}

	state, err := data.GetCatalogState(db)
	if err != nil {
		return fmt.Errorf("getting catalog state: %w", err)
	}
	return encode(cmd, state)
}

func cmdCatalogState(_ context.Context, cmd *cli.Command) error {
	path := getConfig(cmd).catalogPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("catalog %s does not exist, run: tmscan catalog import", path)
	}

	db, err := data.GetDB(path)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer db.Close()

	state, err := data.GetCatalogState(db)
	if err != nil {
		return fmt.Errorf("getting catalog state: %w", err)
	}
	return encode(cmd, state)
}

func cmdCatalogReset(_ context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)
	path := cfg.catalogPath()
	w := writer(cmd)

	if !cmd.Bool(yesFlagName) {
		fmt.Fprintf(w, "This will permanently delete all registrations in %s\n", path)
		fmt.Fprint(w, "Are you sure? [y/N]: ")

		answer, err := bufio.NewReader(reader(cmd)).ReadString('\n')
		if err != nil && answer == "" {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	// the open source handle points at the file being removed
	if cfg.DB != nil {
		cfg.DB.Close()
		cfg.DB = nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting catalog: %w", err)
	}
	slog.Info("catalog deleted", "path", path)

	if err := data.Init(path); err != nil {
		return fmt.Errorf("re-initializing catalog: %w", err)
	}

	slog.Info("catalog re-initialized", "path", path)
	fmt.Fprintln(w, "Reset complete.")
	return nil
}
