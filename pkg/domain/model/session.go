package model

import (
	"sync"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
)

// Session is a caller-owned, append-only analysis history.
// The pipeline appends to it but never reads it.
type Session struct {
	mu      sync.Mutex
	reports []*Report
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Append records a report. A nil session or report is ignored.
func (s *Session) Append(report *Report) {
	if s == nil || report == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
}

// History returns the recorded reports, oldest first
func (s *Session) History() []*Report {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]*Report, len(s.reports))
	copy(history, s.reports)
	return history
}

// Len returns the number of recorded reports
func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// CountByRisk returns how many reports ended at each risk level
func (s *Session) CountByRisk() map[types.RiskLevel]int {
	counts := make(map[types.RiskLevel]int)
	for _, r := range s.History() {
		if r.Assessment == nil {
			continue
		}
		counts[r.Assessment.RiskLevel]++
	}
	return counts
}
