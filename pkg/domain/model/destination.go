package model

import "github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"

// DestinationResolution is the outcome of matching a destination against the matrix
type DestinationResolution struct {
	Query      string                 `json:"query"`
	Row        *DestinationControlRow `json:"row,omitempty"`
	Candidates []string               `json:"candidates,omitempty"`
	Embargoed  bool                   `json:"embargoed"`
	Embargo    string                 `json:"embargo,omitempty"`
}

// Resolved reports whether exactly one matrix row was selected
func (r *DestinationResolution) Resolved() bool {
	return r != nil && r.Row != nil
}

// ReasonRequirement is the requirement of one control reason at the destination.
// Column is empty when no matrix column covers the reason.
type ReasonRequirement struct {
	Reason      types.ControlReason `json:"reason"`
	Column      types.ControlReason `json:"column,omitempty"`
	Requirement types.Requirement   `json:"requirement"`
}

// DestinationEvaluation combines the resolution with the classification's control reasons
type DestinationEvaluation struct {
	Requirements  []ReasonRequirement        `json:"requirements"`
	Determination types.LicenseDetermination `json:"determination"`
}

// Required returns the requirements that need permission
func (e *DestinationEvaluation) Required() []ReasonRequirement {
	return e.filter(types.RequirementRequired)
}

// Unknown returns the requirements with no matrix mapping
func (e *DestinationEvaluation) Unknown() []ReasonRequirement {
	return e.filter(types.RequirementUnknown)
}

func (e *DestinationEvaluation) filter(req types.Requirement) []ReasonRequirement {
	if e == nil {
		return nil
	}
	var result []ReasonRequirement
	for _, r := range e.Requirements {
		if r.Requirement == req {
			result = append(result, r)
		}
	}
	return result
}

// DestinationControl is the value of the destination stage
type DestinationControl struct {
	Resolution *DestinationResolution `json:"resolution"`
	Evaluation *DestinationEvaluation `json:"evaluation,omitempty"`
}
