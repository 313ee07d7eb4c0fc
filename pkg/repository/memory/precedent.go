package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type precedentRepository struct {
	mu      sync.RWMutex
	entries map[model.PrecedentID]*model.Precedent
}

func newPrecedentRepository() *precedentRepository {
	return &precedentRepository{
		entries: make(map[model.PrecedentID]*model.Precedent),
	}
}

func copyPrecedent(p *model.Precedent) *model.Precedent {
	copied := *p
	if p.Metadata != nil {
		copied.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			copied.Metadata[k] = v
		}
	}
	if p.Embedding != nil {
		copied.Embedding = make([]float32, len(p.Embedding))
		copy(copied.Embedding, p.Embedding)
	}
	return &copied
}

func (r *precedentRepository) Put(ctx context.Context, precedent *model.Precedent) (*model.Precedent, error) {
	if precedent == nil {
		return nil, goerr.New("precedent is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyPrecedent(precedent)
	if stored.ID == "" {
		stored.ID = model.NewPrecedentID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.entries[stored.ID] = stored
	return copyPrecedent(stored), nil
}

func (r *precedentRepository) Get(ctx context.Context, id model.PrecedentID) (*model.Precedent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "precedent not found", goerr.V(model.PrecedentIDKey, id))
	}
	return copyPrecedent(p), nil
}

func (r *precedentRepository) Search(ctx context.Context, embedding []float32, topK int) ([]*model.PrecedentMatch, error) {
	if topK <= 0 {
		return []*model.PrecedentMatch{}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var candidates []*model.PrecedentMatch
	for _, p := range r.entries {
		if len(p.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, &model.PrecedentMatch{
			ID:       p.ID,
			Score:    cosineSimilarity(embedding, p.Embedding),
			Metadata: p.Attributes(),
		})
	}

	// ID breaks ties so results do not depend on map order
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ID < candidates[j].ID
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	return candidates[:topK], nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
