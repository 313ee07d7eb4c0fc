package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

func TestRiskLevel_Max(t *testing.T) {
	gt.V(t, types.RiskLevelLow.Max(types.RiskLevelHigh)).Equal(types.RiskLevelHigh)
	gt.V(t, types.RiskLevelHigh.Max(types.RiskLevelMedium)).Equal(types.RiskLevelHigh)
	gt.V(t, types.RiskLevelMedium.Max(types.RiskLevelLow)).Equal(types.RiskLevelMedium)
}

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.RiskLevel
		wantErr bool
	}{
		{"low", "low", types.RiskLevelLow, false},
		{"high", "high", types.RiskLevelHigh, false},
		{"uppercase", "HIGH", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseRiskLevel(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.V(t, got).Equal(tt.want)
		})
	}
}

func TestTrigger_Level(t *testing.T) {
	high := map[types.Trigger]bool{
		types.TriggerRestrictedPartyHit:          true,
		types.TriggerEmbargoedDestination:        true,
		types.TriggerLicenseRequiredHighSeverity: true,
	}

	for _, tr := range types.AllTriggers() {
		t.Run(tr.String(), func(t *testing.T) {
			if high[tr] {
				gt.V(t, tr.Level()).Equal(types.RiskLevelHigh)
			} else {
				gt.V(t, tr.Level()).Equal(types.RiskLevelMedium)
			}
		})
	}
}

func TestTrigger_AffectsLicense(t *testing.T) {
	for _, tr := range types.AllTriggers() {
		t.Run(tr.String(), func(t *testing.T) {
			gt.B(t, tr.AffectsLicense()).True()
		})
	}
	gt.B(t, types.Trigger("unknown").AffectsLicense()).False()
}

func TestNormalizeApplicability(t *testing.T) {
	tests := []struct {
		input string
		want  types.Applicability
	}{
		{"applicable", types.ApplicabilityApplicable},
		{" Applicable ", types.ApplicabilityApplicable},
		{"conditional", types.ApplicabilityConditional},
		{"Conditionally applicable", types.ApplicabilityConditional},
		{"not_applicable", types.ApplicabilityNotApplicable},
		{"maybe", types.ApplicabilityNotApplicable},
		{"", types.ApplicabilityNotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			gt.V(t, types.NormalizeApplicability(tt.input)).Equal(tt.want)
		})
	}
}
