package cli

import (
	"context"
	"io"
	"os"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/cli/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var file string
	var llmCfg config.LLM
	var repoCfg config.Repository
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "JSON Lines file of precedents (\"-\" reads stdin)",
			Value:       "-",
			Destination: &file,
		},
	}
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Embed and store regulation snippets and past determinations for exception retrieval",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if repoCfg.Backend() == "memory" {
				logging.Default().Warn("Ingesting into the in-memory repository; precedents are discarded on exit")
			}

			policy, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load policy")
			}

			llmSvc, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM service")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			r, err := openIngestSource(file)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, r)

			uc := usecase.NewIngestUseCase(llmSvc, repo.Precedent(), policy)
			count, err := uc.Ingest(ctx, r)
			if err != nil {
				return goerr.Wrap(err, "ingest failed", goerr.V("stored", count))
			}

			logging.Default().Info("Ingest completed", "file", file, "count", count)
			return nil
		},
	}
}

func openIngestSource(file string) (io.ReadCloser, error) {
	if file == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	// #nosec G304 - path is provided by CLI argument
	f, err := os.Open(file)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open precedent file", goerr.V(model.SourceKey, file))
	}
	return f, nil
}
