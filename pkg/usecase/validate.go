package usecase

import (
	"fmt"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// ValidationIssue is one inconsistency between the reference catalogs and the policy
type ValidationIssue struct {
	Kind    string
	Subject string
	Message string
}

const (
	IssueUnmappedReason       = "unmapped_control_reason"
	IssueEmbargoNotInMatrix   = "embargo_not_in_matrix"
	IssueSeverityNotInMatrix  = "severity_reason_not_in_matrix"
	IssueDuplicateCode        = "duplicate_classification_code"
	IssueMalformedCode        = "malformed_classification_code"
	IssueUnnamedRestrictedRow = "unnamed_restricted_party"
)

// ValidationResult holds the issues found by ValidateReferenceData
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

func (r *ValidationResult) add(kind, subject, format string, args ...any) {
	r.Issues = append(r.Issues, ValidationIssue{
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// ValidateReferenceData cross-checks the catalogs against each other and the policy.
// Every issue found here makes some analysis less precise; none of them stops the pipeline.
func ValidateReferenceData(refs *model.ReferenceData, policy *config.Policy) *ValidationResult {
	result := &ValidationResult{}

	seenCodes := make(map[string]struct{})
	seenReasons := make(map[types.ControlReason]struct{})
	for _, e := range refs.Classification.Entries() {
		if !model.IsWellFormedClassificationCode(e.Code) {
			result.add(IssueMalformedCode, e.Code, "code does not have the digit-letter-three-digit shape")
		}
		if _, ok := seenCodes[e.Code]; ok {
			result.add(IssueDuplicateCode, e.Code, "code appears more than once; the first entry is used")
		}
		seenCodes[e.Code] = struct{}{}

		for _, r := range e.ControlReasons {
			if _, ok := seenReasons[r]; ok {
				continue
			}
			seenReasons[r] = struct{}{}
			if !refs.Matrix.HasColumnFor(r) {
				result.add(IssueUnmappedReason, r.String(), "no matrix column covers the reason (first seen on %s)", e.Code)
			}
		}
	}

	resolver := NewDestinationResolver(refs.Matrix, policy)
	for _, embargo := range policy.EmbargoedDestinations {
		res := resolver.Resolve(embargo)
		if res.Value == nil || !res.Value.Resolution.Resolved() {
			result.add(IssueEmbargoNotInMatrix, embargo, "embargoed destination does not resolve to one matrix row")
		}
	}

	for _, r := range policy.HighSeverityReasons {
		if !refs.Matrix.HasColumnFor(r) {
			result.add(IssueSeverityNotInMatrix, r.String(), "no matrix column belongs to the high-severity reason")
		}
	}

	for i, rec := range refs.Registry.Records {
		if normalizeName(rec.Name) == "" {
			result.add(IssueUnnamedRestrictedRow, fmt.Sprintf("row %d", i+1), "restricted party has no usable name")
		}
	}

	return result
}
