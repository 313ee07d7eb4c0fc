package interfaces

import (
	"context"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
)

// ReportRepository retains analysis reports for audit
type ReportRepository interface {
	Put(ctx context.Context, report *model.Report) error
	Get(ctx context.Context, id model.ReportID) (*model.Report, error)

	// List returns the most recent reports, newest first
	List(ctx context.Context, limit int) ([]*model.Report, error)
}
