package cli

import (
	"context"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/cli/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var catalogCfg config.Catalog
	var policyCfg config.Policy
	var strict bool

	var flags []cli.Flag
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "strict",
		Usage:       "Fail when a consistency issue is found",
		Destination: &strict,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the reference catalogs and the policy file",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			refs, err := catalogCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "catalog validation failed")
			}

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "policy validation failed")
			}

			result := usecase.ValidateReferenceData(refs, policy)
			for _, issue := range result.Issues {
				logger.Warn("Reference data issue found",
					"kind", issue.Kind,
					"subject", issue.Subject,
					"message", issue.Message,
				)
			}

			if result.HasIssues() && strict {
				return goerr.New("reference data consistency check failed", goerr.V("issues", len(result.Issues)))
			}

			logger.Info("Validation completed", "issues", len(result.Issues))
			return nil
		},
	}
}
