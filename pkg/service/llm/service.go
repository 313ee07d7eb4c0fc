package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// client implements Service interface
type client struct {
	llmClient gollem.LLMClient
	dimension int
}

// Option is a functional option for client configuration
type Option func(*client)

// WithEmbeddingDimension overrides the embedding dimension
func WithEmbeddingDimension(dim int) Option {
	return func(c *client) {
		c.dimension = dim
	}
}

// New creates a new LLM service with the provided gollem client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
		dimension: model.EmbeddingDimension,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) Complete(ctx context.Context, input CompleteInput) (string, error) {
	options := []gollem.SessionOption{}
	if input.SystemPrompt != "" {
		options = append(options, gollem.WithSessionSystemPrompt(input.SystemPrompt))
	}
	if input.Schema != nil {
		options = append(options,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(input.Schema),
		)
	}

	session, err := c.llmClient.NewSession(ctx, options...)
	if err != nil {
		return "", serviceError(err, "failed to create LLM session")
	}

	genOpts := []gollem.GenerateOption{gollem.WithTemperature(input.Temperature)}
	if input.MaxTokens > 0 {
		genOpts = append(genOpts, gollem.WithMaxTokens(input.MaxTokens))
	}

	started := time.Now()
	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(input.Prompt)}, genOpts...)
	if err != nil {
		return "", serviceError(err, "failed to generate content from LLM",
			goerr.V("prompt_chars", len(input.Prompt)))
	}

	logging.From(ctx).Debug("LLM completion finished",
		slog.Duration("elapsed", time.Since(started)),
		slog.Int("prompt_chars", len(input.Prompt)),
		slog.Float64("temperature", input.Temperature),
		slog.Int("max_tokens", input.MaxTokens),
	)

	if resp == nil || len(resp.Texts) == 0 {
		return "", serviceError(goerr.New("empty response"), "LLM returned no text")
	}

	return strings.Join(resp.Texts, ""), nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.llmClient.GenerateEmbedding(ctx, c.dimension, []string{text})
	if err != nil {
		return nil, serviceError(err, "failed to generate embedding")
	}

	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, serviceError(goerr.New("empty embedding"), "no embedding returned")
	}

	// Convert float64 to float32
	result := make([]float32, len(embeddings[0]))
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result, nil
}

// serviceError marks err as a backend failure so callers can match model.ErrService
func serviceError(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(model.ErrService, err), msg, opts...)
}
