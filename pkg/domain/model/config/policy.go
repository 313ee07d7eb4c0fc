package config

import (
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// Policy holds the tunable limits and regulatory lists of the pipeline
type Policy struct {
	MaxInputChars        int // raw text is cut to this many runes before extraction
	MaxItemChars         int // item description is cut before classification
	CatalogItemsPerGroup int
	CatalogPromptChars   int
	ContextChars         int // retrieved-record context block
	TopK                 int
	StageTimeout         time.Duration

	ClassificationTemperature float64
	ExceptionTemperature      float64
	MaxTokens                 int

	EmbargoedDestinations []string
	HighSeverityReasons   []types.ControlReason

	// NotifyRiskLevel is the lowest risk level that is sent to the notifier
	NotifyRiskLevel types.RiskLevel
}

// DefaultPolicy returns the policy used when no policy file is given
func DefaultPolicy() *Policy {
	return &Policy{
		MaxInputChars:             5000,
		MaxItemChars:              2000,
		CatalogItemsPerGroup:      10,
		CatalogPromptChars:        12000,
		ContextChars:              6000,
		TopK:                      5,
		StageTimeout:              60 * time.Second,
		ClassificationTemperature: 0.2,
		ExceptionTemperature:      0.2,
		MaxTokens:                 2000,
		EmbargoedDestinations:     []string{"North Korea", "Iran", "Syria", "Cuba", "Crimea"},
		HighSeverityReasons: []types.ControlReason{
			types.ControlReasonNS,
			types.ControlReasonNP,
			types.ControlReasonMT,
			types.ControlReasonCB,
		},
		NotifyRiskLevel: types.RiskLevelHigh,
	}
}

// IsHighSeverity reports whether a required matrix column belongs to a high-severity reason
func (p *Policy) IsHighSeverity(column types.ControlReason) bool {
	for _, r := range p.HighSeverityReasons {
		if r.Covers(column) {
			return true
		}
	}
	return false
}
