package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/guorui-lawtech/tmscan/pkg/analysis"
	"github.com/guorui-lawtech/tmscan/pkg/export"
	"github.com/urfave/cli/v3"
)

const (
	outFlagName  = "out"
	csvFlagName  = "csv"
	fileFlagName = "file"

	exportFileMode = 0644
)

type exportResult struct {
	ID     string `json:"id" yaml:"id"`
	Path   string `json:"path" yaml:"path"`
	Format string `json:"format" yaml:"format"`
	Rows   int    `json:"rows" yaml:"rows"`
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Score matching registrations and write the report archive",
		UsageText: `tmscan export --class 009                   # xlsx report in the current dir
   tmscan export --class 009 --csv --out r.zip # CSV report to r.zip`,
		HideHelpCommand: true,
		Flags: append(criteriaFlags(),
			&cli.StringFlag{
				Name:  outFlagName,
				Usage: "Archive path (default: ./<report name>.zip)",
			},
			&cli.BoolFlag{
				Name:  csvFlagName,
				Usage: "Write CSV instead of xlsx",
			},
		),
		Action: cmdExport,
	}
}

func cmdExport(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	c, err := criteria(cmd)
	if err != nil {
		return err
	}

	loc := locale(cmd)
	rows, err := analysis.Scan(ctx, cfg.Source, evaluator(cmd), c)
	if err != nil {
		return fmt.Errorf("searching registrations: %w", err)
	}

	spreadsheet := cfg.Config.Report.Spreadsheet && !cmd.Bool(csvFlagName)
	b, err := export.NewExporter(cfg.Config.Report.Name, spreadsheet, loc).Export(analysis.ToTable(rows, loc))
	if errors.Is(err, export.ErrEmptyTable) {
		return errors.New("no registrations match the criteria, nothing to export")
	}
	if err != nil {
		return fmt.Errorf("exporting report: %w", err)
	}

	out := cmd.String(outFlagName)
	if out == "" {
		out = b.Name
	}
	if err := os.WriteFile(out, b.Data, exportFileMode); err != nil {
		return fmt.Errorf("writing report %s: %w", out, err)
	}

	abs, err := filepath.Abs(out)
	if err != nil {
		abs = out
	}
	slog.Info("report written", "path", abs, "rows", b.Rows, "format", b.Format)

	return encode(cmd, &exportResult{
		ID:     b.ID,
		Path:   abs,
		Format: b.Format,
		Rows:   b.Rows,
	})
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:            "inspect",
		Usage:           "List the entries, summary and rows of a report archive",
		UsageText:       "tmscan inspect --file GuoRui_Report.zip",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     fileFlagName,
				Usage:    "Report archive path",
				Required: true,
			},
		},
		Action: cmdInspect,
	}
}

func cmdInspect(_ context.Context, cmd *cli.Command) error {
	p := cmd.String(fileFlagName)
	b, err := os.ReadFile(p)
	if err != nil {
		return fmt.Errorf("reading report %s: %w", p, err)
	}

	c, err := export.Inspect(b)
	if err != nil {
		return fmt.Errorf("inspecting report %s: %w", p, err)
	}
	return encode(cmd, c)
}
