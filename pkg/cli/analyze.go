package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/safe"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdAnalyze() *cli.Command {
	var pipelineCfg pipelineConfig
	var inputs []string
	var fields model.ExtractedFields
	var jsonOutput bool
	var noColor bool

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Inquiry text file to analyze. Repeatable; \"-\" reads stdin",
			Destination: &inputs,
		},
		&cli.StringFlag{
			Name:        "item",
			Category:    "Fields",
			Usage:       "Item description (skips extraction)",
			Destination: &fields.ItemDescription,
		},
		&cli.StringFlag{
			Name:        "destination",
			Category:    "Fields",
			Usage:       "Destination country or region",
			Destination: &fields.Destination,
		},
		&cli.StringFlag{
			Name:        "end-user",
			Category:    "Fields",
			Usage:       "End user organization",
			Destination: &fields.EndUser,
		},
		&cli.StringFlag{
			Name:        "end-use",
			Category:    "Fields",
			Usage:       "Intended end use",
			Destination: &fields.EndUse,
		},
		&cli.StringFlag{
			Name:        "contract-value",
			Category:    "Fields",
			Usage:       "Contract value, e.g. \"USD 4,000\"",
			Destination: &fields.ContractValue,
		},
		&cli.StringFlag{
			Name:        "delivery-date",
			Category:    "Fields",
			Usage:       "Delivery date",
			Destination: &fields.DeliveryDate,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print reports as JSON lines",
			Destination: &jsonOutput,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Sources:     cli.EnvVars("NO_COLOR"),
			Destination: &noColor,
		},
	}
	flags = append(flags, pipelineCfg.Flags()...)

	return &cli.Command{
		Name:    "analyze",
		Aliases: []string{"a"},
		Usage:   "Analyze inquiries and print the export control reports",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if noColor {
				color.NoColor = true
			}

			uc, closer, err := pipelineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			out := reportWriter{w: os.Stdout, json: jsonOutput}
			session := model.NewSession()

			if !fields.IsEmpty() {
				if len(inputs) > 0 {
					return goerr.New("--input can not be combined with field flags")
				}
				report, err := uc.Analyze.Analyze(ctx, session, fields)
				if err != nil {
					return goerr.Wrap(err, "analysis failed")
				}
				return out.write(report)
			}

			if len(inputs) == 0 {
				inputs = []string{"-"}
			}
			for _, input := range inputs {
				text, err := readInput(ctx, input)
				if err != nil {
					return err
				}
				report, err := uc.Analyze.AnalyzeDocument(ctx, session, input, text)
				if err != nil {
					return goerr.Wrap(err, "analysis failed", goerr.V(model.SourceKey, input))
				}
				if err := out.write(report); err != nil {
					return err
				}
			}

			if !jsonOutput && session.Len() > 1 {
				printSessionSummary(os.Stdout, session)
			}
			return nil
		},
	}
}

func readInput(ctx context.Context, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}

	// #nosec G304 - path is provided by CLI argument
	f, err := os.Open(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open input", goerr.V(model.SourceKey, path))
	}
	defer safe.Close(ctx, f)

	data, err := io.ReadAll(f)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read input", goerr.V(model.SourceKey, path))
	}
	return string(data), nil
}

type reportWriter struct {
	w    io.Writer
	json bool
}

func (x reportWriter) write(report *model.Report) error {
	if !x.json {
		printReport(x.w, report)
		return nil
	}
	if err := json.NewEncoder(x.w).Encode(report); err != nil {
		return goerr.Wrap(err, "failed to encode report", goerr.V(model.ReportIDKey, report.ID))
	}
	return nil
}
