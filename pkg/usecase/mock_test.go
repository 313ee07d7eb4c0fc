package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/repository/memory"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
	"github.com/m-mizutani/gt"
)

// mockLLMService is a mock implementation of llm.Service for testing.
// Without completeFn it answers by schema title: classifyCode for the classifier and
// exceptionJSON for the exception stage.
type mockLLMService struct {
	completeFn    func(ctx context.Context, input llm.CompleteInput) (string, error)
	embedFn       func(ctx context.Context, text string) ([]float32, error)
	classifyCode  string
	exceptionJSON string

	mu     sync.Mutex
	inputs []llm.CompleteInput
}

func (m *mockLLMService) Complete(ctx context.Context, input llm.CompleteInput) (string, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()

	if m.completeFn != nil {
		return m.completeFn(ctx, input)
	}
	if input.Schema != nil && input.Schema.Title == "Classification" {
		return `{"code": "` + m.classifyCode + `", "rationale": "matched by description"}`, nil
	}
	if m.exceptionJSON != "" {
		return m.exceptionJSON, nil
	}
	return `{"candidates": []}`, nil
}

func (m *mockLLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockLLMService) calls() []llm.CompleteInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.CompleteInput(nil), m.inputs...)
}

// mockPrecedentRepository is a mock implementation of interfaces.PrecedentRepository.
// Without searchFn it returns one general precedent.
type mockPrecedentRepository struct {
	searchFn func(ctx context.Context, embedding []float32, topK int) ([]*model.PrecedentMatch, error)
	stored   []*model.Precedent
}

func (m *mockPrecedentRepository) Put(ctx context.Context, p *model.Precedent) (*model.Precedent, error) {
	if p.ID == "" {
		p.ID = model.NewPrecedentID()
	}
	m.stored = append(m.stored, p)
	return p, nil
}

func (m *mockPrecedentRepository) Get(ctx context.Context, id model.PrecedentID) (*model.Precedent, error) {
	for _, p := range m.stored {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *mockPrecedentRepository) Search(ctx context.Context, embedding []float32, topK int) ([]*model.PrecedentMatch, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, embedding, topK)
	}
	return []*model.PrecedentMatch{
		{ID: "p-general", Score: 0.8, Metadata: map[string]string{"title": "Limited value shipments", "exception_code": "LVS"}},
	}, nil
}

// mockNotifier records notified reports
type mockNotifier struct {
	mu       sync.Mutex
	reports  []*model.Report
	notified chan struct{}
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{notified: make(chan struct{}, 10)}
}

func (m *mockNotifier) Notify(ctx context.Context, report *model.Report) error {
	m.mu.Lock()
	m.reports = append(m.reports, report)
	m.mu.Unlock()
	m.notified <- struct{}{}
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reports)
}

// newSeededRepository returns an in-memory repository holding one precedent whose
// embedding matches the default mockLLMService embedding
func newSeededRepository(t *testing.T) *memory.Memory {
	t.Helper()
	repo := memory.New()
	_, err := repo.Precedent().Put(context.Background(), &model.Precedent{
		Title:         "Limited value shipments",
		ExceptionCode: "LVS",
		Text:          "Shipments of limited value may use LVS within the listed limits.",
		Citation:      "15 CFR 740.3",
		Embedding:     []float32{1, 0, 0},
	})
	gt.NoError(t, err).Required()
	return repo
}

func reasons(tags ...string) []types.ControlReason {
	out := make([]types.ControlReason, len(tags))
	for i, t := range tags {
		out[i] = types.ControlReason(t)
	}
	return out
}

// newTestReferenceData builds a small catalog, matrix and registry
func newTestReferenceData() *model.ReferenceData {
	entry := func(code, desc string, r ...string) *model.ClassificationEntry {
		return &model.ClassificationEntry{
			Code:           code,
			CategoryID:     code[:1],
			GroupLetter:    code[1:2],
			Description:    desc,
			ControlReasons: reasons(r...),
		}
	}

	catalog := model.NewClassificationCatalog([]*model.ClassificationCategory{
		{
			ID:    "4",
			Title: "Computers",
			Groups: []*model.ClassificationGroup{{
				Letter: "A",
				Title:  "Systems, Equipment and Components",
				Entries: []*model.ClassificationEntry{
					entry("4A003", "Digital computers and electronic assemblies", "NS", "AT"),
					entry("4A994", "Computers not controlled by 4A001 or 4A003", "AT1"),
				},
			}},
		},
		{
			ID:    "5",
			Title: "Telecommunications and Information Security",
			Groups: []*model.ClassificationGroup{{
				Letter: "A",
				Title:  "Systems, Equipment and Components",
				Entries: []*model.ClassificationEntry{
					entry("5A002", "Information security equipment including networking encryption hardware", "NS1", "AT1"),
					entry("5A992", "Mass market encryption equipment", "AT1"),
					entry("5A991", "Telecommunications equipment with a reason that has no column", "RS"),
				},
			}},
		},
	})

	columns := reasons("NS1", "NS2", "MT1", "NP1", "AT1")
	row := func(name string, required ...string) *model.DestinationControlRow {
		r := &model.DestinationControlRow{Destination: name, PermissionRequired: map[types.ControlReason]bool{}}
		for _, c := range columns {
			r.PermissionRequired[c] = false
		}
		for _, c := range required {
			r.PermissionRequired[types.ControlReason(c)] = true
		}
		return r
	}

	matrix := &model.ControlMatrix{
		Columns: columns,
		Rows: []*model.DestinationControlRow{
			row("Canada"),
			row("China", "NS1", "NS2", "MT1", "NP1"),
			row("Korea, North", "NS1", "NS2", "MT1", "NP1", "AT1"),
			row("Korea, South"),
			row("Japan", "NS2"),
			row("Niger", "NS1"),
			row("Nigeria"),
		},
	}

	registry := &model.RestrictedPartyRegistry{Records: []*model.RestrictedPartyRecord{
		{
			Name:           "Huawei Technologies Co. Ltd.",
			Country:        "China",
			ListingReason:  "Activities contrary to national security",
			RegulationText: "License required for all items subject to the EAR",
		},
		{
			Name:           "Example Defense Research Institute",
			Country:        "Iran",
			ListingReason:  "Weapons of mass destruction procurement",
			RegulationText: "Presumption of denial",
		},
	}}

	return &model.ReferenceData{Classification: catalog, Matrix: matrix, Registry: registry}
}
