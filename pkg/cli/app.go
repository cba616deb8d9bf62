package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/guorui-lawtech/tmscan/pkg/config"
	"github.com/guorui-lawtech/tmscan/pkg/data"
	"github.com/guorui-lawtech/tmscan/pkg/logging"
	"github.com/guorui-lawtech/tmscan/pkg/score"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appConfigKey = "app-config"
	configEnvVar = "TMSCAN_CONFIG"

	formatJSON = "json"
	formatYAML = "yaml"

	debugFlagName  = "debug"
	configFlagName = "config"
	formatFlagName = "format"
	localeFlagName = "locale"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

type appConfig struct {
	Dir    string
	Config *config.Config
	Source data.Source
	DB     *sql.DB
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "tmscan",
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Trademark cancellation opportunity scanner",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  debugFlagName,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&cli.StringFlag{
				Name:    configFlagName,
				Usage:   "Config directory (default: $HOME/.tmscan)",
				Sources: cli.EnvVars(configEnvVar),
			},
			&cli.StringFlag{
				Name:  formatFlagName,
				Usage: "Output format [json, yaml]",
				Value: formatJSON,
			},
			&cli.StringFlag{
				Name:  localeFlagName,
				Usage: "Label language [zh, en] (default: config locale)",
			},
		},
		Commands: []*cli.Command{
			evaluateCmd(),
			searchCmd(),
			diagnoseCmd(),
			exportCmd(),
			inspectCmd(),
			catalogCmd(),
			authCmd(),
			serverCmd(),
		},
		Before: before,
		After: func(ctx context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
				cfg.DB = nil
			}
			return nil
		},
	}
}

// before loads the config, sets up logging and opens the registration source.
func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	dir := cmd.String(configFlagName)
	if dir == "" {
		d, _, err := config.GetOrCreateHomeDir(config.AppName)
		if err != nil {
			return ctx, fmt.Errorf("getting home dir: %w", err)
		}
		dir = d
	}

	cfg, err := config.ReadOrCreate(dir)
	if err != nil {
		return ctx, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.LogLevel
	if cmd.Bool(debugFlagName) {
		level = "debug"
	}
	logging.Setup(level, logging.FormatText)
	slog.Debug("config loaded", "dir", dir, "locale", cfg.Locale)

	ac := &appConfig{Dir: dir, Config: cfg}
	if err := openSource(ac); err != nil {
		return ctx, err
	}

	cmd.Root().Metadata[appConfigKey] = ac
	return ctx, nil
}

// openSource uses the sqlite catalogue when a path is configured and the
// built-in demonstration records otherwise.
func openSource(ac *appConfig) error {
	p := ac.Config.Catalog.Path
	if p == "" {
		ac.Source = data.NewMockSource()
		return nil
	}

	if err := data.Init(p); err != nil {
		return fmt.Errorf("initializing catalog: %w", err)
	}

	db, err := data.GetDB(p)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}

	ac.DB = db
	ac.Source = data.NewCachedSource(data.NewCatalogSource(db, p),
		ac.Config.Catalog.CacheSize, ac.Config.Catalog.CacheTTL())
	return nil
}

// catalogPath is the configured catalogue or the default file in the config dir.
func (ac *appConfig) catalogPath() string {
	if ac.Config.Catalog.Path != "" {
		return ac.Config.Catalog.Path
	}
	return filepath.Join(ac.Dir, data.CatalogFileName)
}

// locale prefers the --locale flag over the config file.
func locale(cmd *cli.Command) string {
	if v := cmd.String(localeFlagName); v != "" {
		return score.NormalizeLocale(v)
	}
	return score.NormalizeLocale(getConfig(cmd).Config.Locale)
}

func evaluator(cmd *cli.Command) *score.Evaluator {
	return score.NewEvaluator(locale(cmd))
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}

func encode(cmd *cli.Command, v any) error {
	w := writer(cmd)
	switch f := strings.ToLower(cmd.String(formatFlagName)); f {
	case formatYAML, "yml":
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	case formatJSON, "":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	default:
		return errors.New("unsupported output format: " + f)
	}
}
