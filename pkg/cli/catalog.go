package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/cli/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// catalogConfig holds the flags shared by the catalog subcommands
type catalogConfig struct {
	catalog    config.Catalog
	policy     config.Policy
	jsonOutput bool
	noColor    bool
}

func (x *catalogConfig) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print JSON instead of text",
			Destination: &x.jsonOutput,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Sources:     cli.EnvVars("NO_COLOR"),
			Destination: &x.noColor,
		},
	}
	flags = append(flags, x.catalog.Flags()...)
	flags = append(flags, x.policy.Flags()...)
	return flags
}

func (x *catalogConfig) Configure(ctx context.Context) (*usecase.CatalogUseCase, error) {
	if x.noColor {
		color.NoColor = true
	}

	refs, err := x.catalog.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalogs")
	}
	policy, err := x.policy.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load policy")
	}
	return usecase.NewCatalogUseCase(refs, policy), nil
}

func cmdCatalog() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Search the classification catalog and show where a code needs a license",
		Commands: []*cli.Command{
			cmdCatalogSearch(),
			cmdCatalogShow(),
		},
	}
}

func cmdCatalogSearch() *cli.Command {
	var cfg catalogConfig
	var limit int64

	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of entries (0 for all)",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Search entries by code or description keywords",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.Configure(ctx)
			if err != nil {
				return err
			}

			query := strings.Join(c.Args().Slice(), " ")
			entries, err := uc.Search(query, int(limit))
			if err != nil {
				return goerr.Wrap(err, "catalog search failed")
			}

			if cfg.jsonOutput {
				return writeJSONTo(os.Stdout, entries)
			}
			printEntries(os.Stdout, entries)
			return nil
		},
	}
}

func cmdCatalogShow() *cli.Command {
	var cfg catalogConfig

	return &cli.Command{
		Name:      "show",
		Usage:     "Show a code and the destinations where it needs a license",
		ArgsUsage: "<code>",
		Flags:     cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one classification code is required")
			}

			uc, err := cfg.Configure(ctx)
			if err != nil {
				return err
			}

			detail, err := uc.Detail(c.Args().First())
			if err != nil {
				return goerr.Wrap(err, "catalog lookup failed")
			}

			if cfg.jsonOutput {
				return writeJSONTo(os.Stdout, detail)
			}
			printCodeDetail(os.Stdout, detail)
			return nil
		},
	}
}

func writeJSONTo(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	return nil
}
