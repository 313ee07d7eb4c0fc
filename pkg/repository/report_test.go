package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func newTestReport(createdAt time.Time) *model.Report {
	r := &model.Report{
		ID:        model.NewReportID(),
		CreatedAt: createdAt,
		Fields: model.ExtractedFields{
			ItemDescription: "networking encryption hardware",
			Destination:     "North Korea",
		},
		Classification: model.OK(types.StageClassification, &model.Classification{
			Code:           "5A002",
			ControlReasons: []types.ControlReason{"NS1", "AT1"},
		}),
		Exceptions: model.Unavailable[*model.ExceptionAnalysis](types.StageExceptions, nil,
			"retrieval failed", model.ErrService),
		Assessment: &model.RiskAssessment{
			RiskLevel:            types.RiskLevelHigh,
			LicenseDetermination: types.LicenseRequired,
			Triggers:             []types.Trigger{types.TriggerEmbargoedDestination},
		},
	}
	r.CollectDegradedStages()
	return r
}

func runReportRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		report := newTestReport(time.Now().UTC().Truncate(time.Millisecond))
		gt.NoError(t, repo.Report().Put(ctx, report)).Required()

		got, err := repo.Report().Get(ctx, report.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(report.ID)
		gt.Value(t, got.Fields.Destination).Equal("North Korea")
		gt.Value(t, got.Classification.Value.Code).Equal("5A002")
		gt.Value(t, got.Assessment.RiskLevel).Equal(types.RiskLevelHigh)
		gt.Value(t, got.Exceptions.Status).Equal(types.StageStatusUnavailable)
		gt.Array(t, got.DegradedStages).Length(1)
		gt.Bool(t, got.CreatedAt.Equal(report.CreatedAt)).True()
	})

	t.Run("Get returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Report().Get(context.Background(), model.NewReportID())
		gt.Bool(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("Put requires ID", func(t *testing.T) {
		repo := newRepo(t)
		gt.Error(t, repo.Report().Put(context.Background(), &model.Report{}))
	})

	t.Run("List returns newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UTC().Add(time.Hour)
		older := newTestReport(base)
		newer := newTestReport(base.Add(time.Minute))
		gt.NoError(t, repo.Report().Put(ctx, older)).Required()
		gt.NoError(t, repo.Report().Put(ctx, newer)).Required()

		reports, err := repo.Report().List(ctx, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, reports).Length(2)
		gt.Value(t, reports[0].ID).Equal(newer.ID)
		gt.Value(t, reports[1].ID).Equal(older.ID)
	})
}

func TestMemoryReportRepository(t *testing.T) {
	runReportRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreReportRepository(t *testing.T) {
	runReportRepositoryTest(t, newFirestoreRepository)
}
