package model

import "github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"

// LicensedDestination is a matrix destination where a code needs a license
type LicensedDestination struct {
	Destination string                `json:"destination"`
	Embargoed   bool                  `json:"embargoed"`
	Embargo     string                `json:"embargo,omitempty"`
	Columns     []types.ControlReason `json:"columns"`
}

// CodeDetail is a catalog entry with the destinations that need a license for it
type CodeDetail struct {
	Entry        *ClassificationEntry  `json:"entry"`
	Destinations []LicensedDestination `json:"destinations"`
	// UnmappedReasons lists control reasons of the entry that no matrix column covers
	UnmappedReasons []types.ControlReason `json:"unmapped_reasons"`
	// TotalDestinations is the number of matrix rows evaluated
	TotalDestinations int `json:"total_destinations"`
}
