package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/repository/memory"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestIngestUseCase_Ingest(t *testing.T) {
	ctx := context.Background()

	t.Run("records are embedded and searchable", func(t *testing.T) {
		repo := memory.New()
		var embedded []string
		svc := &mockLLMService{embedFn: func(ctx context.Context, text string) ([]float32, error) {
			embedded = append(embedded, text)
			return []float32{1, 0, 0}, nil
		}}
		uc := usecase.New(repo, newTestReferenceData(), svc)

		input := `{"id": "gbs-1", "title": "Shipments to Country Group B", "exception_code": "gbs", "text": "GBS authorizes exports of NS items to Group B.", "citation": "15 CFR 740.4", "metadata": {"source": "EAR"}}

{"title": "Limited value shipments", "exception_code": "LVS", "text": "LVS applies below the value limit."}
`
		count, err := uc.Ingest.Ingest(ctx, strings.NewReader(input))
		gt.NoError(t, err).Required()
		gt.N(t, count).Equal(2)
		gt.A(t, embedded).Length(2).Required()
		gt.B(t, strings.HasPrefix(embedded[0], "License exception GBS\n")).True()

		got, err := repo.Precedent().Get(ctx, "gbs-1")
		gt.NoError(t, err).Required()
		gt.V(t, got.ExceptionCode).Equal("GBS")
		gt.V(t, got.Metadata["source"]).Equal("EAR")

		matches, err := repo.Precedent().Search(ctx, []float32{1, 0, 0}, 5)
		gt.NoError(t, err).Required()
		gt.A(t, matches).Length(2)
	})

	t.Run("bad line stops with its line number", func(t *testing.T) {
		repo := &mockPrecedentRepository{}
		uc := usecase.NewIngestUseCase(&mockLLMService{}, repo, nil)

		input := `{"id": "a", "text": "first"}
{"id": "b", "text": ""}
{"id": "c", "text": "third"}
`
		count, err := uc.Ingest(ctx, strings.NewReader(input))
		gt.Value(t, err).NotNil()
		gt.N(t, count).Equal(1)
		gt.A(t, repo.stored).Length(1)
		gt.B(t, strings.Contains(err.Error(), "empty")).True()
	})

	t.Run("broken JSON is an error", func(t *testing.T) {
		uc := usecase.NewIngestUseCase(&mockLLMService{}, &mockPrecedentRepository{}, nil)
		_, err := uc.Ingest(ctx, strings.NewReader("{not json}\n"))
		gt.Value(t, err).NotNil()
	})

	t.Run("embedding failure is returned", func(t *testing.T) {
		svc := &mockLLMService{embedFn: func(ctx context.Context, text string) ([]float32, error) {
			return nil, model.ErrService
		}}
		uc := usecase.NewIngestUseCase(svc, &mockPrecedentRepository{}, nil)
		count, err := uc.Ingest(ctx, strings.NewReader(`{"text": "x"}`))
		gt.N(t, count).Equal(0)
		gt.B(t, errors.Is(err, model.ErrService)).True()
	})
}
