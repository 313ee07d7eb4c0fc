package interfaces

import (
	"context"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
)

// Notifier delivers a finished report to people who need to act on it
type Notifier interface {
	Notify(ctx context.Context, report *model.Report) error
}
