package cli

import (
	"context"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/cli/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// pipelineConfig groups the flags every pipeline command needs
type pipelineConfig struct {
	precedents []string
	catalog    config.Catalog
	llm        config.LLM
	repo       config.Repository
	policy     config.Policy
	slack      config.Slack
}

func (p *pipelineConfig) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "precedents",
			Category:    "Repository",
			Usage:       "JSON Lines file of precedents ingested at startup (repeatable)",
			Sources:     cli.EnvVars("EXPORT_CONTROL_PRECEDENTS"),
			Destination: &p.precedents,
		},
	}
	flags = append(flags, p.catalog.Flags()...)
	flags = append(flags, p.llm.Flags()...)
	flags = append(flags, p.repo.Flags()...)
	flags = append(flags, p.policy.Flags()...)
	flags = append(flags, p.slack.Flags()...)
	return flags
}

// Configure builds the use cases. The returned function closes the repository.
func (p *pipelineConfig) Configure(ctx context.Context) (*usecase.UseCases, func(), error) {
	refs, err := p.catalog.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load catalogs")
	}

	policy, err := p.policy.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load policy")
	}

	llmSvc, err := p.llm.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize LLM service")
	}
	logging.Default().Info("LLM service enabled", "llm", p.llm.LogAttrs())

	notifier, err := p.slack.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize Slack notifier")
	}

	repo, err := p.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	opts := []usecase.Option{usecase.WithPolicy(policy)}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
		logging.Default().Info("Slack notification enabled", "slack", p.slack.LogAttrs(), "notify_risk_level", policy.NotifyRiskLevel)
	}

	uc := usecase.New(repo, refs, llmSvc, opts...)

	count, err := preloadPrecedents(ctx, uc.Ingest, p.precedents)
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to preload precedents")
	}
	if count == 0 && p.repo.Backend() == "memory" {
		logging.Default().Warn("Precedent index is empty; license exception analysis will be unavailable. Use --precedents to load it")
	}

	return uc, closer, nil
}

// preloadPrecedents ingests each JSON Lines file and returns the number of stored precedents
func preloadPrecedents(ctx context.Context, ingest *usecase.IngestUseCase, paths []string) (int, error) {
	total := 0
	for _, path := range paths {
		if path == "-" {
			return total, goerr.New("stdin can not be used to preload precedents")
		}
		r, err := openIngestSource(path)
		if err != nil {
			return total, err
		}
		count, err := ingest.Ingest(ctx, r)
		safe.Close(ctx, r)
		total += count
		if err != nil {
			return total, goerr.Wrap(err, "failed to ingest precedent file", goerr.V(model.SourceKey, path))
		}
		logging.Default().Info("Precedents preloaded", "file", path, "count", count)
	}
	return total, nil
}
