package usecase

import (
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// CatalogUseCase answers classification catalog searches and per-code destination maps
type CatalogUseCase struct {
	refs     *model.ReferenceData
	resolver *DestinationResolver
}

// NewCatalogUseCase creates a CatalogUseCase
func NewCatalogUseCase(refs *model.ReferenceData, policy *config.Policy) *CatalogUseCase {
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &CatalogUseCase{refs: refs, resolver: NewDestinationResolver(refs.Matrix, policy)}
}

// Search returns catalog entries whose code equals the query or whose description
// shares words with it. An exact code hit comes first.
func (uc *CatalogUseCase) Search(query string, limit int) ([]*model.ClassificationEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, goerr.Wrap(ErrEmptyInput, "search query is empty")
	}

	var entries []*model.ClassificationEntry
	exact, hasExact := uc.refs.Classification.Lookup(query)
	if hasExact {
		entries = append(entries, exact)
	}
	for _, e := range uc.refs.Classification.Search(query, 0) {
		if hasExact && e == exact {
			continue
		}
		entries = append(entries, e)
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []*model.ClassificationEntry{}
	}
	return entries, nil
}

// Detail returns the entry of code and every matrix destination where it needs a
// license, in matrix order. Embargoed destinations always need one.
func (uc *CatalogUseCase) Detail(code string) (*model.CodeDetail, error) {
	entry, ok := uc.refs.Classification.Lookup(code)
	if !ok {
		return nil, goerr.Wrap(model.ErrNotFound, "classification code not found", goerr.V(model.CodeKey, code))
	}

	classification := model.NewClassificationFromEntry(entry, "")
	detail := &model.CodeDetail{
		Entry:           entry,
		Destinations:    []model.LicensedDestination{},
		UnmappedReasons: []types.ControlReason{},
	}

	for _, row := range uc.refs.Matrix.Rows {
		if row.Destination == "" {
			continue
		}
		detail.TotalDestinations++

		resolution := &model.DestinationResolution{Query: row.Destination, Row: row}
		uc.resolver.checkEmbargo(resolution)
		eval := uc.resolver.Evaluate(resolution, classification)
		if eval.Determination != types.LicenseRequired {
			continue
		}

		licensed := model.LicensedDestination{
			Destination: row.Destination,
			Embargoed:   resolution.Embargoed,
			Embargo:     resolution.Embargo,
			Columns:     []types.ControlReason{},
		}
		for _, req := range eval.Required() {
			licensed.Columns = append(licensed.Columns, req.Column)
		}
		detail.Destinations = append(detail.Destinations, licensed)
	}

	for _, reason := range classification.ControlReasons {
		if !uc.refs.Matrix.HasColumnFor(reason) {
			detail.UnmappedReasons = appendReason(detail.UnmappedReasons, reason)
		}
	}
	return detail, nil
}
