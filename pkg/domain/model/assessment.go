package model

import "github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"

// RiskAssessment is the aggregated verdict. It is not modified after it is returned.
type RiskAssessment struct {
	RiskLevel            types.RiskLevel            `json:"risk_level"`
	LicenseDetermination types.LicenseDetermination `json:"license_determination"`
	Triggers             []types.Trigger            `json:"triggers"`
	Warnings             []string                   `json:"warnings"`
	RecommendedActions   []string                   `json:"recommended_actions"`
	CoveredReasons       []types.ControlReason      `json:"covered_reasons,omitempty"`
}

// HasTrigger reports whether the trigger fired
func (a *RiskAssessment) HasTrigger(t types.Trigger) bool {
	for _, tr := range a.Triggers {
		if tr == t {
			return true
		}
	}
	return false
}
