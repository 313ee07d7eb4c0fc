package types

import "strings"

// Applicability describes whether a license exception can be used
type Applicability string

const (
	ApplicabilityApplicable    Applicability = "applicable"
	ApplicabilityConditional   Applicability = "conditional"
	ApplicabilityNotApplicable Applicability = "not_applicable"
)

// IsValid checks if the applicability is valid
func (a Applicability) IsValid() bool {
	switch a {
	case ApplicabilityApplicable,
		ApplicabilityConditional,
		ApplicabilityNotApplicable:
		return true
	default:
		return false
	}
}

// String returns the string representation of the applicability
func (a Applicability) String() string {
	return string(a)
}

// NormalizeApplicability maps free-form model output onto an Applicability.
// Anything unrecognised is treated as not applicable.
func NormalizeApplicability(s string) Applicability {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.NewReplacer("-", "_", " ", "_").Replace(v)
	switch v {
	case "applicable", "available", "eligible", "yes":
		return ApplicabilityApplicable
	case "conditional", "conditionally_applicable", "conditions_apply", "partial":
		return ApplicabilityConditional
	default:
		return ApplicabilityNotApplicable
	}
}
