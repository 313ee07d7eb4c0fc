package types

// Requirement is the permission requirement of one control reason at one destination
type Requirement string

const (
	RequirementRequired    Requirement = "required"
	RequirementNotRequired Requirement = "not_required"
	// RequirementUnknown is used when the control matrix has no mapping; it needs review
	RequirementUnknown Requirement = "unknown"
)

// String returns the string representation of the requirement
func (r Requirement) String() string {
	return string(r)
}
