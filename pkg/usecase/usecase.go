package usecase

import (
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
)

type UseCases struct {
	repo     interfaces.Repository
	refs     *model.ReferenceData
	policy   *config.Policy
	notifier interfaces.Notifier
	Analyze  *AnalyzeUseCase
	Ingest   *IngestUseCase
	Catalog  *CatalogUseCase
}

type Option func(*UseCases)

func WithPolicy(policy *config.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func New(repo interfaces.Repository, refs *model.ReferenceData, llmSvc llm.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		refs:   refs,
		policy: config.DefaultPolicy(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Analyze = NewAnalyzeUseCase(refs, llmSvc, repo.Precedent(), repo.Report(), uc.notifier, uc.policy)
	uc.Ingest = NewIngestUseCase(llmSvc, repo.Precedent(), uc.policy)
	uc.Catalog = NewCatalogUseCase(refs, uc.policy)

	return uc
}

// ReferenceData returns the loaded reference data
func (uc *UseCases) ReferenceData() *model.ReferenceData {
	return uc.refs
}

// Policy returns the active policy
func (uc *UseCases) Policy() *config.Policy {
	return uc.policy
}
