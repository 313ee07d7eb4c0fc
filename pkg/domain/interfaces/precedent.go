package interfaces

import (
	"context"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
)

// PrecedentRepository stores regulation snippets and past determinations for retrieval
type PrecedentRepository interface {
	// Put creates or replaces a precedent. An empty ID is assigned.
	Put(ctx context.Context, precedent *model.Precedent) (*model.Precedent, error)

	// Get retrieves a precedent by ID
	Get(ctx context.Context, id model.PrecedentID) (*model.Precedent, error)

	// Search returns up to topK precedents nearest to the embedding by cosine distance,
	// best first
	Search(ctx context.Context, embedding []float32, topK int) ([]*model.PrecedentMatch, error)
}
