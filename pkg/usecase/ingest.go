package usecase

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const maxIngestLineBytes = 1024 * 1024

// IngestUseCase loads regulation snippets and past determinations into the precedent index
type IngestUseCase struct {
	llm        llm.Service
	precedents interfaces.PrecedentRepository
	policy     *config.Policy
}

// NewIngestUseCase creates an IngestUseCase
func NewIngestUseCase(llmSvc llm.Service, precedents interfaces.PrecedentRepository, policy *config.Policy) *IngestUseCase {
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &IngestUseCase{llm: llmSvc, precedents: precedents, policy: policy}
}

type precedentRecord struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	ExceptionCode string            `json:"exception_code"`
	Text          string            `json:"text"`
	Citation      string            `json:"citation"`
	Metadata      map[string]string `json:"metadata"`
}

// Ingest reads JSON Lines precedents from r, embeds and stores each of them.
// Blank lines are skipped. It stops at the first bad line and returns how many
// precedents were stored before it.
func (uc *IngestUseCase) Ingest(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxIngestLineBytes)

	count := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var rec precedentRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return count, goerr.Wrap(err, "failed to parse precedent", goerr.V(model.LineKey, line))
		}
		if strings.TrimSpace(rec.Text) == "" {
			return count, goerr.New("precedent text is empty", goerr.V(model.LineKey, line), goerr.V(model.PrecedentIDKey, rec.ID))
		}

		if _, err := uc.Put(ctx, &model.Precedent{
			ID:            model.PrecedentID(strings.TrimSpace(rec.ID)),
			Title:         strings.TrimSpace(rec.Title),
			ExceptionCode: strings.ToUpper(strings.TrimSpace(rec.ExceptionCode)),
			Text:          rec.Text,
			Citation:      strings.TrimSpace(rec.Citation),
			Metadata:      rec.Metadata,
		}); err != nil {
			return count, goerr.Wrap(err, "failed to ingest precedent", goerr.V(model.LineKey, line))
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, goerr.Wrap(err, "failed to read precedents", goerr.V(model.LineKey, line))
	}

	logging.From(ctx).Info("precedents ingested", slog.Int("count", count))
	return count, nil
}

// Put embeds one precedent and stores it
func (uc *IngestUseCase) Put(ctx context.Context, p *model.Precedent) (*model.Precedent, error) {
	embedCtx, cancel := withStageTimeout(ctx, uc.policy.StageTimeout)
	defer cancel()

	embedding, err := uc.llm.Embed(embedCtx, p.EmbeddingText())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed precedent", goerr.V(model.PrecedentIDKey, p.ID))
	}
	p.Embedding = embedding

	stored, err := uc.precedents.Put(ctx, p)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store precedent", goerr.V(model.PrecedentIDKey, p.ID))
	}
	return stored, nil
}
