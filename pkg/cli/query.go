package cli

import (
	"context"
	"fmt"

	"github.com/guorui-lawtech/tmscan/pkg/analysis"
	"github.com/guorui-lawtech/tmscan/pkg/data"
	"github.com/urfave/cli/v3"
)

const (
	dateFlagName  = "date"
	idFlagName    = "id"
	classFlagName = "class"
	fromFlagName  = "from"
	toFlagName    = "to"
	limitFlagName = "limit"
)

// criteriaFlags are shared by search and export.
func criteriaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  classFlagName,
			Usage: "Nice class code, e.g. 009 (can be specified multiple times)",
		},
		&cli.StringFlag{
			Name:  fromFlagName,
			Usage: "Registered on or after (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  toFlagName,
			Usage: "Registered on or before (YYYY-MM-DD)",
		},
	}
}

func criteria(cmd *cli.Command) (*data.Criteria, error) {
	c := &data.Criteria{
		Classes: data.NormalizeClasses(cmd.StringSlice(classFlagName)),
		From:    cmd.String(fromFlagName),
		To:      cmd.String(toFlagName),
	}
	if cmd.IsSet(limitFlagName) {
		c.Limit = int(cmd.Int(limitFlagName))
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search criteria: %w", err)
	}
	return c, nil
}

func evaluateCmd() *cli.Command {
	return &cli.Command{
		Name:            "evaluate",
		Aliases:         []string{"eval"},
		Usage:           "Score a registration date",
		UsageText:       "tmscan evaluate --date 2016-12-06",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     dateFlagName,
				Usage:    "Registration date (YYYY-MM-DD)",
				Required: true,
			},
		},
		Action: cmdEvaluate,
	}
}

func cmdEvaluate(_ context.Context, cmd *cli.Command) error {
	a := evaluator(cmd).Evaluate(cmd.String(dateFlagName))
	if err := encode(cmd, a); err != nil {
		return fmt.Errorf("encoding assessment: %w", err)
	}
	return nil
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Score every registration matching the criteria",
		UsageText: `tmscan search --class 009                      # one class
   tmscan search --class 009 --class 035 --limit 10   # any of the classes
   tmscan search --from 2014-01-01 --to 2021-12-31    # registered in range`,
		HideHelpCommand: true,
		Flags: append(criteriaFlags(), &cli.IntFlag{
			Name:  limitFlagName,
			Usage: "Limits number of results returned (default: no limit)",
		}),
		Action: cmdSearch,
	}
}

func cmdSearch(ctx context.Context, cmd *cli.Command) error {
	c, err := criteria(cmd)
	if err != nil {
		return err
	}

	rows, err := analysis.Scan(ctx, getConfig(cmd).Source, evaluator(cmd), c)
	if err != nil {
		return fmt.Errorf("searching registrations: %w", err)
	}

	if err := encode(cmd, rows); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return nil
}

func diagnoseCmd() *cli.Command {
	return &cli.Command{
		Name:            "diagnose",
		Usage:           "Deep analysis of one registration with its radar metrics",
		UsageText:       "tmscan diagnose --id 5093077",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     idFlagName,
				Usage:    "Registration number",
				Required: true,
			},
		},
		Action: cmdDiagnose,
	}
}

func cmdDiagnose(ctx context.Context, cmd *cli.Command) error {
	d, err := analysis.Diagnose(ctx, getConfig(cmd).Source, evaluator(cmd), cmd.String(idFlagName))
	if err != nil {
		return err
	}

	if err := encode(cmd, d); err != nil {
		return fmt.Errorf("encoding diagnosis: %w", err)
	}
	return nil
}
