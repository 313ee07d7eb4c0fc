package types

// Trigger identifies a risk signal raised by the aggregator
type Trigger string

const (
	TriggerRestrictedPartyHit           Trigger = "restricted_party_hit"
	TriggerEmbargoedDestination         Trigger = "embargoed_destination"
	TriggerLicenseRequiredHighSeverity  Trigger = "license_required_high_severity"
	TriggerLicenseRequired              Trigger = "license_required"
	TriggerControlRequirementUnknown    Trigger = "control_requirement_unknown"
	TriggerAmbiguousDestination         Trigger = "ambiguous_destination"
	TriggerClassificationUnverified     Trigger = "classification_unverified"
	TriggerExceptionAnalysisUnavailable Trigger = "exception_analysis_unavailable"
	TriggerEndUserUnscreened            Trigger = "end_user_unscreened"
)

// AllTriggers returns all triggers in report order
func AllTriggers() []Trigger {
	return []Trigger{
		TriggerRestrictedPartyHit,
		TriggerEmbargoedDestination,
		TriggerLicenseRequiredHighSeverity,
		TriggerLicenseRequired,
		TriggerControlRequirementUnknown,
		TriggerAmbiguousDestination,
		TriggerClassificationUnverified,
		TriggerExceptionAnalysisUnavailable,
		TriggerEndUserUnscreened,
	}
}

// Level returns the risk tier the trigger raises the assessment to
func (t Trigger) Level() RiskLevel {
	switch t {
	case TriggerRestrictedPartyHit,
		TriggerEmbargoedDestination,
		TriggerLicenseRequiredHighSeverity:
		return RiskLevelHigh
	case TriggerLicenseRequired,
		TriggerControlRequirementUnknown,
		TriggerAmbiguousDestination,
		TriggerClassificationUnverified,
		TriggerExceptionAnalysisUnavailable,
		TriggerEndUserUnscreened:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// AffectsLicense reports whether the trigger prevents a not_required determination.
// The determination follows the risk tier, so every trigger above low does.
func (t Trigger) AffectsLicense() bool {
	return t.Level() != RiskLevelLow
}

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
