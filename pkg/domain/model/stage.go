package model

import (
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// StageResult is the tagged outcome of one pipeline stage. Value may be set even when
// Status is not ok, for example the sentinel classification of a degraded classifier.
type StageResult[T any] struct {
	Stage  types.StageName   `json:"stage"`
	Status types.StageStatus `json:"status"`
	Reason string            `json:"reason,omitempty"`
	Err    error             `json:"-"`
	Value  T                 `json:"value"`
}

// OK returns a successful stage result
func OK[T any](stage types.StageName, v T) StageResult[T] {
	return StageResult[T]{Stage: stage, Status: types.StageStatusOK, Value: v}
}

// Degraded returns a fallback stage result
func Degraded[T any](stage types.StageName, v T, reason string, err error) StageResult[T] {
	return StageResult[T]{Stage: stage, Status: types.StageStatusDegraded, Value: v, Reason: reason, Err: err}
}

// Unavailable returns a failed stage result
func Unavailable[T any](stage types.StageName, v T, reason string, err error) StageResult[T] {
	return StageResult[T]{Stage: stage, Status: types.StageStatusUnavailable, Value: v, Reason: reason, Err: err}
}

// Skipped returns a stage result for a stage that had no input
func Skipped[T any](stage types.StageName, v T, reason string) StageResult[T] {
	return StageResult[T]{Stage: stage, Status: types.StageStatusSkipped, Value: v, Reason: reason}
}

// Degradation returns the degraded-stage entry of the result, if it did not succeed
func (s StageResult[T]) Degradation() (DegradedStage, bool) {
	if !s.Status.Failed() {
		return DegradedStage{}, false
	}
	d := DegradedStage{Stage: s.Stage, Status: s.Status, Reason: s.Reason}
	if s.Err != nil {
		d.Error = s.Err.Error()
	}
	return d, true
}

// DegradedStage lists one stage that did not succeed in a report
type DegradedStage struct {
	Stage  types.StageName   `json:"stage"`
	Status types.StageStatus `json:"status"`
	Reason string            `json:"reason"`
	Error  string            `json:"error,omitempty"`
}
