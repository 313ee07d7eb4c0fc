package model

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// PrecedentID is a UUID-based identifier for Precedent
type PrecedentID string

// NewPrecedentID generates a new UUID v4 PrecedentID
func NewPrecedentID() PrecedentID {
	return PrecedentID(uuid.New().String())
}

// Precedent is a retrievable regulation snippet or past determination
type Precedent struct {
	ID            PrecedentID
	Title         string
	ExceptionCode string
	Text          string
	Citation      string
	Metadata      map[string]string
	Embedding     []float32
	CreatedAt     time.Time
}

// Attributes returns the payload used in retrieval results. Metadata keys are
// overridden by the named fields.
func (p *Precedent) Attributes() map[string]string {
	attrs := make(map[string]string, len(p.Metadata)+4)
	for k, v := range p.Metadata {
		attrs[k] = v
	}
	for k, v := range map[string]string{
		"title":          p.Title,
		"exception_code": p.ExceptionCode,
		"text":           p.Text,
		"citation":       p.Citation,
	} {
		if v != "" {
			attrs[k] = v
		}
	}
	return attrs
}

// EmbeddingText returns the text that is embedded for the precedent
func (p *Precedent) EmbeddingText() string {
	text := p.Text
	if p.Title != "" {
		text = p.Title + "\n" + text
	}
	if p.ExceptionCode != "" {
		text = "License exception " + p.ExceptionCode + "\n" + text
	}
	return text
}

// PrecedentMatch is one nearest-neighbour search result. Score is cosine similarity.
type PrecedentMatch struct {
	ID       PrecedentID       `json:"id"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}
