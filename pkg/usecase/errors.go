package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// ErrEmptyInput is returned when an analysis request or catalog search carries no input
	ErrEmptyInput = goerr.New("empty input")
)
