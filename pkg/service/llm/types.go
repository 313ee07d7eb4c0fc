package llm

import (
	"context"

	"github.com/m-mizutani/gollem"
)

// Service is the completion and embedding capability used by the pipeline
type Service interface {
	// Complete sends one prompt and returns the first text of the response
	Complete(ctx context.Context, input CompleteInput) (string, error)

	// Embed returns the embedding vector of text
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompleteInput is one completion request. When Schema is set the response is
// requested as JSON that conforms to it.
type CompleteInput struct {
	SystemPrompt string
	Prompt       string
	Temperature  float64
	MaxTokens    int
	Schema       *gollem.Parameter
}
