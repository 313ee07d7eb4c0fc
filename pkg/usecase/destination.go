package usecase

import (
	"fmt"
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DestinationResolver looks destinations up in the control matrix
type DestinationResolver struct {
	matrix *model.ControlMatrix
	policy *config.Policy
}

// NewDestinationResolver creates a DestinationResolver
func NewDestinationResolver(matrix *model.ControlMatrix, policy *config.Policy) *DestinationResolver {
	return &DestinationResolver{matrix: matrix, policy: policy}
}

// Resolve matches the destination against the first column of the matrix.
// Rows whose name contains the destination (or is contained by it) are candidates; when
// none is found, rows with the same set of words are tried ("North Korea" and
// "Korea, North"). More than one candidate is resolved only by an exact name match.
// Zero or several candidates degrade the stage with model.ErrAmbiguousDestination.
func (r *DestinationResolver) Resolve(destination string) model.StageResult[*model.DestinationControl] {
	query := strings.TrimSpace(destination)
	resolution := &model.DestinationResolution{Query: query}
	control := &model.DestinationControl{Resolution: resolution}

	if query == "" {
		err := goerr.Wrap(model.ErrAmbiguousDestination, "destination is empty")
		return model.Degraded(types.StageDestination, control, "destination is unknown", err)
	}

	candidates := r.candidates(query)
	switch {
	case len(candidates) == 1:
		resolution.Row = candidates[0]
	case len(candidates) > 1:
		if row, ok := r.matrix.Find(query); ok {
			resolution.Row = row
		}
	}

	r.checkEmbargo(resolution)

	if resolution.Row != nil {
		return model.OK(types.StageDestination, control)
	}

	for _, c := range candidates {
		resolution.Candidates = append(resolution.Candidates, c.Destination)
	}

	var reason string
	if len(candidates) == 0 {
		reason = fmt.Sprintf("destination %q matches no row of the control matrix", query)
	} else {
		reason = fmt.Sprintf("destination %q matches %d rows: %s", query, len(candidates), strings.Join(resolution.Candidates, ", "))
	}
	err := goerr.Wrap(model.ErrAmbiguousDestination, "destination does not resolve to one row",
		goerr.V(model.DestinationKey, query),
		goerr.V("candidates", resolution.Candidates))
	return model.Degraded(types.StageDestination, control, reason, err)
}

func (r *DestinationResolver) candidates(query string) []*model.DestinationControlRow {
	q := normalizeName(query)

	var matches []*model.DestinationControlRow
	for _, row := range r.matrix.Rows {
		name := normalizeName(row.Destination)
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			matches = append(matches, row)
		}
	}
	if len(matches) > 0 {
		return matches
	}

	qWords := nameWords(query)
	for _, row := range r.matrix.Rows {
		words := nameWords(row.Destination)
		if containsAllWords(words, qWords) && containsAllWords(qWords, words) {
			matches = append(matches, row)
		}
	}
	return matches
}

// checkEmbargo flags the resolution when the query or the resolved row names an
// embargoed destination. The matrix does not need to list it.
func (r *DestinationResolver) checkEmbargo(resolution *model.DestinationResolution) {
	names := []string{resolution.Query}
	if resolution.Row != nil {
		names = append(names, resolution.Row.Destination)
	}

	for _, embargo := range r.policy.EmbargoedDestinations {
		embargoWords := nameWords(embargo)
		for _, name := range names {
			if containsAllWords(nameWords(name), embargoWords) {
				resolution.Embargoed = true
				resolution.Embargo = embargo
				return
			}
		}
	}
}

// Evaluate maps each control reason of the classification onto the matrix columns it
// covers at the resolved destination. It returns nil when the destination is not resolved.
func (r *DestinationResolver) Evaluate(resolution *model.DestinationResolution, classification *model.Classification) *model.DestinationEvaluation {
	if !resolution.Resolved() {
		return nil
	}

	eval := &model.DestinationEvaluation{Requirements: []model.ReasonRequirement{}}
	seen := make(map[types.ControlReason]struct{})

	if classification != nil {
		for _, reason := range classification.ControlReasons {
			columns := r.matrix.ColumnsFor(reason)
			if len(columns) == 0 {
				eval.Requirements = append(eval.Requirements, model.ReasonRequirement{
					Reason:      reason,
					Requirement: types.RequirementUnknown,
				})
				continue
			}
			for _, col := range columns {
				if _, ok := seen[col]; ok {
					continue
				}
				seen[col] = struct{}{}
				eval.Requirements = append(eval.Requirements, model.ReasonRequirement{
					Reason:      reason,
					Column:      col,
					Requirement: resolution.Row.Requirement(col),
				})
			}
		}
	}

	eval.Determination = types.LicenseNotRequired
	if resolution.Embargoed || len(eval.Required()) > 0 {
		eval.Determination = types.LicenseRequired
	}
	return eval
}
