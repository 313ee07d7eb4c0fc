package model

import "github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"

// ExceptionCandidate is a license exception proposed for one transaction.
// Grounded is false when none of SourceIDs refers to a retrieved record.
type ExceptionCandidate struct {
	ExceptionCode  string                `json:"exception_code"`
	Applicability  types.Applicability   `json:"applicability"`
	ControlReasons []types.ControlReason `json:"control_reasons"`
	Conditions     []string              `json:"conditions"`
	Rationale      string                `json:"rationale"`
	Citation       string                `json:"citation"`
	SourceIDs      []string              `json:"source_ids"`
	Grounded       bool                  `json:"grounded"`
}

// Usable reports whether the candidate can lift a license requirement
func (c *ExceptionCandidate) Usable() bool {
	return c.Grounded && c.Applicability == types.ApplicabilityApplicable
}

// CoversReason reports whether the candidate lists a reason covering the column
func (c *ExceptionCandidate) CoversReason(column types.ControlReason) bool {
	for _, r := range c.ControlReasons {
		if r.Covers(column) {
			return true
		}
	}
	return false
}

// ExceptionAnalysis is the value of the exception stage
type ExceptionAnalysis struct {
	Query      string                `json:"query"`
	Records    []*PrecedentMatch     `json:"records"`
	Candidates []*ExceptionCandidate `json:"candidates"`
}
