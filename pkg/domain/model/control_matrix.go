package model

import (
	"strings"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// DestinationControlRow is one destination of the control matrix. A column that is
// absent from PermissionRequired is unknown and must be reviewed.
type DestinationControlRow struct {
	Destination        string                       `json:"destination"`
	PermissionRequired map[types.ControlReason]bool `json:"permission_required"`
}

// Requirement returns the requirement for one matrix column
func (r *DestinationControlRow) Requirement(column types.ControlReason) types.Requirement {
	required, ok := r.PermissionRequired[types.NormalizeControlReason(string(column))]
	switch {
	case !ok:
		return types.RequirementUnknown
	case required:
		return types.RequirementRequired
	default:
		return types.RequirementNotRequired
	}
}

// ControlMatrix is the read-only destination by control-reason matrix
type ControlMatrix struct {
	Columns []types.ControlReason
	Rows    []*DestinationControlRow
}

// ColumnsFor returns the matrix columns covered by the reason, in column order
func (m *ControlMatrix) ColumnsFor(reason types.ControlReason) []types.ControlReason {
	var columns []types.ControlReason
	for _, col := range m.Columns {
		if reason.Covers(col) {
			columns = append(columns, col)
		}
	}
	return columns
}

// HasColumnFor reports whether any column of the matrix is covered by the reason
func (m *ControlMatrix) HasColumnFor(reason types.ControlReason) bool {
	return len(m.ColumnsFor(reason)) > 0
}

// Destinations returns the destination names in matrix order
func (m *ControlMatrix) Destinations() []string {
	names := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		names[i] = r.Destination
	}
	return names
}

// Find returns the row whose destination equals name, ignoring case
func (m *ControlMatrix) Find(name string) (*DestinationControlRow, bool) {
	for _, r := range m.Rows {
		if strings.EqualFold(strings.TrimSpace(r.Destination), strings.TrimSpace(name)) {
			return r, true
		}
	}
	return nil, false
}
