package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// reportRepository keeps reports in their JSON form, the same shape the
// Firestore repository persists
type reportRepository struct {
	mu      sync.RWMutex
	entries map[model.ReportID]*storedReport
}

type storedReport struct {
	id        model.ReportID
	createdAt int64
	body      []byte
}

func newReportRepository() *reportRepository {
	return &reportRepository{
		entries: make(map[model.ReportID]*storedReport),
	}
}

func (r *reportRepository) Put(ctx context.Context, report *model.Report) error {
	if report == nil {
		return goerr.New("report is nil")
	}
	if report.ID == "" {
		return goerr.New("report ID is required")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal report", goerr.V(model.ReportIDKey, report.ID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[report.ID] = &storedReport{
		id:        report.ID,
		createdAt: report.CreatedAt.UnixNano(),
		body:      body,
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id model.ReportID) (*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "report not found", goerr.V(model.ReportIDKey, id))
	}
	return decodeReport(stored)
}

func (r *reportRepository) List(ctx context.Context, limit int) ([]*model.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := make([]*storedReport, 0, len(r.entries))
	for _, s := range r.entries {
		stored = append(stored, s)
	}
	sort.Slice(stored, func(i, j int) bool {
		if stored[i].createdAt != stored[j].createdAt {
			return stored[i].createdAt > stored[j].createdAt
		}
		return stored[i].id < stored[j].id
	})

	if limit > 0 && len(stored) > limit {
		stored = stored[:limit]
	}

	reports := make([]*model.Report, 0, len(stored))
	for _, s := range stored {
		report, err := decodeReport(s)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func decodeReport(s *storedReport) (*model.Report, error) {
	var report model.Report
	if err := json.Unmarshal(s.body, &report); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal report", goerr.V(model.ReportIDKey, s.id))
	}
	return &report, nil
}
