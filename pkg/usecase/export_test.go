package usecase

import "time"

// CatalogExcerpt is exported for testing
var CatalogExcerpt = (*Classifier).catalogExcerpt

// ParseExceptionCandidates is exported for testing
var ParseExceptionCandidates = parseExceptionCandidates

// NormalizeName is exported for testing
var NormalizeName = normalizeName

// TruncateLines is exported for testing
var TruncateLines = truncateLines

// ParseClassificationResponse is exported for testing
func ParseClassificationResponse(raw string) (string, string) {
	resp := parseClassificationResponse(raw)
	return resp.Code, resp.Rationale
}

// SetClock replaces the clock of the use case
func SetClock(uc *AnalyzeUseCase, now func() time.Time) {
	uc.now = now
}
