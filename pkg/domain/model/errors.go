package model

import "github.com/m-mizutani/goerr/v2"

// Pipeline errors
var (
	// ErrExtractionAmbiguity is recorded when a field label matched but carried no usable value
	ErrExtractionAmbiguity = goerr.New("extraction ambiguity")

	// ErrClassificationMismatch is recorded when the model returned a code that is not in the catalog
	ErrClassificationMismatch = goerr.New("classification code mismatch")

	// ErrAmbiguousDestination is recorded when the destination does not resolve to exactly one matrix row
	ErrAmbiguousDestination = goerr.New("ambiguous destination")

	// ErrService wraps failures of the completion and retrieval backends
	ErrService = goerr.New("external service error")

	// ErrCatalogLoad is returned when reference data can not be loaded. It is fatal at startup.
	ErrCatalogLoad = goerr.New("failed to load catalog")

	// ErrNoPrecedent is recorded when retrieval finds nothing, usually an empty or misconfigured index
	ErrNoPrecedent = goerr.New("no precedent retrieved")

	// ErrStageTimeout is recorded when a stage exceeded its deadline
	ErrStageTimeout = goerr.New("stage timed out")

	// ErrNotFound is returned by repositories when a record does not exist
	ErrNotFound = goerr.New("not found")
)

// Context keys for error values
const (
	StageKey       = "stage"
	CodeKey        = "code"
	DestinationKey = "destination"
	EndUserKey     = "end_user"
	SourceKey      = "source"
	LineKey        = "line"
	ReportIDKey    = "report_id"
	PrecedentIDKey = "precedent_id"
)
