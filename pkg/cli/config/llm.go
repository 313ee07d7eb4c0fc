package config

import (
	"context"
	"log/slog"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

// LLM holds configuration for the completion and embedding backend
type LLM struct {
	provider string

	geminiProject  string
	geminiLocation string
	geminiModel    string

	openaiAPIKey string `masq:"secret"`
	openaiModel  string
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Category:    "LLM",
			Usage:       "LLM provider (gemini, openai)",
			Value:       providerGemini,
			Sources:     cli.EnvVars("EXPORT_CONTROL_LLM_PROVIDER"),
			Destination: &l.provider,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Category:    "LLM",
			Usage:       "Google Cloud project ID for Gemini API",
			Sources:     cli.EnvVars("EXPORT_CONTROL_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Category:    "LLM",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Sources:     cli.EnvVars("EXPORT_CONTROL_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Category:    "LLM",
			Usage:       "Gemini model name",
			Sources:     cli.EnvVars("EXPORT_CONTROL_GEMINI_MODEL"),
			Destination: &l.geminiModel,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Category:    "LLM",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("EXPORT_CONTROL_OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Category:    "LLM",
			Usage:       "OpenAI model name",
			Sources:     cli.EnvVars("EXPORT_CONTROL_OPENAI_MODEL"),
			Destination: &l.openaiModel,
		},
	}
}

// LogAttrs returns log attributes for the LLM configuration
func (l *LLM) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("provider", l.provider)}
	switch l.provider {
	case providerGemini:
		attrs = append(attrs,
			slog.String("project_id", l.geminiProject),
			slog.String("location", l.geminiLocation),
			slog.String("model", l.geminiModel),
		)
	case providerOpenAI:
		attrs = append(attrs, slog.String("model", l.openaiModel))
	}
	return attrs
}

// Configure creates the LLM service for the selected provider
func (l *LLM) Configure(ctx context.Context) (llm.Service, error) {
	client, err := l.newClient(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := llm.New(client)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM service", goerr.V(ProviderKey, l.provider))
	}
	return svc, nil
}

func (l *LLM) newClient(ctx context.Context) (gollem.LLMClient, error) {
	switch l.provider {
	case providerGemini:
		if l.geminiProject == "" {
			return nil, goerr.Wrap(ErrMissingOption, "gemini-project is required for gemini provider")
		}
		var opts []gemini.Option
		if l.geminiModel != "" {
			opts = append(opts, gemini.WithModel(l.geminiModel))
		}
		client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case providerOpenAI:
		if l.openaiAPIKey == "" {
			return nil, goerr.Wrap(ErrMissingOption, "openai-api-key is required for openai provider")
		}
		var opts []openai.Option
		if l.openaiModel != "" {
			opts = append(opts, openai.WithModel(l.openaiModel))
		}
		client, err := openai.New(ctx, l.openaiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid LLM provider", goerr.V(ProviderKey, l.provider))
	}
}
