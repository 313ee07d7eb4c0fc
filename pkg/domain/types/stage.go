package types

// StageName identifies a pipeline stage in reports
type StageName string

const (
	StageExtraction     StageName = "extraction"
	StageClassification StageName = "classification"
	StageDestination    StageName = "destination_control"
	StageScreening      StageName = "restricted_party_screening"
	StageExceptions     StageName = "exception_analysis"
	StageAggregation    StageName = "risk_aggregation"
)

// String returns the string representation of the stage name
func (s StageName) String() string {
	return string(s)
}

// StageStatus is the tag of a stage result
type StageStatus string

const (
	// StageStatusOK means the stage produced a trustworthy value
	StageStatusOK StageStatus = "ok"
	// StageStatusDegraded means the stage produced a fallback value that needs confirmation
	StageStatusDegraded StageStatus = "degraded"
	// StageStatusUnavailable means the stage could not produce a value
	StageStatusUnavailable StageStatus = "unavailable"
	// StageStatusSkipped means the stage had no input to work on
	StageStatusSkipped StageStatus = "skipped"
)

// IsValid checks if the stage status is valid
func (s StageStatus) IsValid() bool {
	switch s {
	case StageStatusOK,
		StageStatusDegraded,
		StageStatusUnavailable,
		StageStatusSkipped:
		return true
	default:
		return false
	}
}

// Failed reports whether the stage did not fully succeed
func (s StageStatus) Failed() bool {
	return s != StageStatusOK
}

// String returns the string representation of the stage status
func (s StageStatus) String() string {
	return string(s)
}
