package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportID is a UUID-based identifier for Report
type ReportID string

// NewReportID generates a new UUID v4 ReportID
func NewReportID() ReportID {
	return ReportID(uuid.New().String())
}

// Report is the full, auditable result of one pipeline run
type Report struct {
	ID             ReportID                         `json:"id"`
	Source         string                           `json:"source,omitempty"`
	CreatedAt      time.Time                        `json:"created_at"`
	Fields         ExtractedFields                  `json:"fields"`
	Classification StageResult[*Classification]     `json:"classification"`
	Destination    StageResult[*DestinationControl] `json:"destination"`
	Screening      StageResult[*ScreeningResult]    `json:"screening"`
	Exceptions     StageResult[*ExceptionAnalysis]  `json:"exceptions"`
	Assessment     *RiskAssessment                  `json:"assessment"`
	DegradedStages []DegradedStage                  `json:"degraded_stages"`
}

// CollectDegradedStages fills DegradedStages from the stage results in pipeline order
func (r *Report) CollectDegradedStages() {
	r.DegradedStages = nil
	for _, d := range []func() (DegradedStage, bool){
		r.Classification.Degradation,
		r.Destination.Degradation,
		r.Screening.Degradation,
		r.Exceptions.Degradation,
	} {
		if stage, ok := d(); ok {
			r.DegradedStages = append(r.DegradedStages, stage)
		}
	}
}
