package memory

import (
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
)

// Memory is an in-process repository for local runs and tests
type Memory struct {
	precedent *precedentRepository
	report    *reportRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		precedent: newPrecedentRepository(),
		report:    newReportRepository(),
	}
}

func (m *Memory) Precedent() interfaces.PrecedentRepository {
	return m.precedent
}

func (m *Memory) Report() interfaces.ReportRepository {
	return m.report
}

func (m *Memory) Close() error {
	return nil
}
