package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/service/llm"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/async"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/errutil"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// AnalyzeUseCase runs the compliance pipeline for one transaction
type AnalyzeUseCase struct {
	classifier *Classifier
	resolver   *DestinationResolver
	screener   *Screener
	exceptions *ExceptionRetriever
	policy     *config.Policy
	reports    interfaces.ReportRepository
	notifier   interfaces.Notifier
	now        func() time.Time
}

// NewAnalyzeUseCase creates an AnalyzeUseCase. reports and notifier may be nil.
func NewAnalyzeUseCase(refs *model.ReferenceData, llmSvc llm.Service, precedents interfaces.PrecedentRepository, reports interfaces.ReportRepository, notifier interfaces.Notifier, policy *config.Policy) *AnalyzeUseCase {
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &AnalyzeUseCase{
		classifier: NewClassifier(llmSvc, refs.Classification, policy),
		resolver:   NewDestinationResolver(refs.Matrix, policy),
		screener:   NewScreener(refs.Registry),
		exceptions: NewExceptionRetriever(llmSvc, precedents, policy),
		policy:     policy,
		reports:    reports,
		notifier:   notifier,
		now:        time.Now,
	}
}

// AnalyzeText extracts the fields from free text and runs the pipeline
func (uc *AnalyzeUseCase) AnalyzeText(ctx context.Context, session *model.Session, text string) (*model.Report, error) {
	return uc.AnalyzeDocument(ctx, session, "", text)
}

// AnalyzeDocument is AnalyzeText with the name of the document recorded in the report
func (uc *AnalyzeUseCase) AnalyzeDocument(ctx context.Context, session *model.Session, source, text string) (*model.Report, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(ErrEmptyInput, "document has no text", goerr.V(model.SourceKey, source))
	}

	extraction := ExtractFields(truncateRunes(text, uc.policy.MaxInputChars))
	if len(extraction.Ambiguities) > 0 {
		logging.From(ctx).Warn("extraction ambiguity",
			slog.String("source", source),
			slog.Any("ambiguities", extraction.Ambiguities),
		)
	}
	return uc.run(ctx, session, source, extraction)
}

// Analyze runs the pipeline on fields that are already structured
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, session *model.Session, fields model.ExtractedFields) (*model.Report, error) {
	if fields.IsEmpty() {
		return nil, goerr.Wrap(ErrEmptyInput, "no transaction field is given")
	}
	return uc.run(ctx, session, "", Extraction{Fields: fields})
}

func (uc *AnalyzeUseCase) run(ctx context.Context, session *model.Session, source string, extraction Extraction) (*model.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "analysis canceled")
	}

	fields := extraction.Fields
	report := &model.Report{
		ID:        model.NewReportID(),
		Source:    source,
		CreatedAt: uc.now(),
		Fields:    fields,
	}
	logger := logging.From(ctx).With(slog.String("report_id", string(report.ID)))
	ctx = logging.With(ctx, logger)

	var eg errgroup.Group
	eg.Go(func() error {
		report.Classification = uc.classifier.Classify(ctx, fields.ItemDescription, fields.EndUse)
		return nil
	})
	eg.Go(func() error {
		report.Destination = uc.resolver.Resolve(fields.Destination)
		return nil
	})
	eg.Go(func() error {
		report.Screening = uc.screener.Screen(fields.EndUser)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "pipeline stage failed")
	}

	if dc := report.Destination.Value; dc != nil {
		dc.Evaluation = uc.resolver.Evaluate(dc.Resolution, report.Classification.Value)
	}

	report.Exceptions = uc.exceptions.Retrieve(ctx, ExceptionInput{
		Fields:         fields,
		Classification: report.Classification.Value,
		Destination:    report.Destination.Value,
	})

	report.Assessment = Aggregate(AggregateInput{
		Fields:         fields,
		Ambiguities:    extraction.Ambiguities,
		Classification: report.Classification,
		Destination:    report.Destination,
		Screening:      report.Screening,
		Exceptions:     report.Exceptions,
	}, uc.policy)
	report.CollectDegradedStages()

	for _, d := range report.DegradedStages {
		logger.Warn("stage degraded",
			slog.String("stage", d.Stage.String()),
			slog.String("status", d.Status.String()),
			slog.String("reason", d.Reason),
			slog.String("error", d.Error),
		)
	}
	logger.Info("analysis completed",
		slog.String("risk_level", report.Assessment.RiskLevel.String()),
		slog.String("license_determination", report.Assessment.LicenseDetermination.String()),
		slog.Int("degraded_stages", len(report.DegradedStages)),
	)

	session.Append(report)
	uc.retain(ctx, report)
	uc.notify(ctx, report)

	return report, nil
}

// retain stores the report for audit. A storage failure does not fail the analysis.
func (uc *AnalyzeUseCase) retain(ctx context.Context, report *model.Report) {
	if uc.reports == nil {
		return
	}
	if err := uc.reports.Put(ctx, report); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to retain report",
			goerr.V(model.ReportIDKey, report.ID)), "report retention failed")
	}
}

func (uc *AnalyzeUseCase) notify(ctx context.Context, report *model.Report) {
	if uc.notifier == nil || report.Assessment.RiskLevel.Rank() < uc.policy.NotifyRiskLevel.Rank() {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := uc.notifier.Notify(ctx, report); err != nil {
			return goerr.Wrap(err, "failed to notify report", goerr.V(model.ReportIDKey, report.ID))
		}
		return nil
	})
}

// Report returns a retained report
func (uc *AnalyzeUseCase) Report(ctx context.Context, id model.ReportID) (*model.Report, error) {
	if uc.reports == nil {
		return nil, goerr.Wrap(model.ErrNotFound, "report retention is disabled", goerr.V(model.ReportIDKey, id))
	}
	report, err := uc.reports.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get report", goerr.V(model.ReportIDKey, id))
	}
	return report, nil
}

// Reports returns the most recent retained reports, newest first
func (uc *AnalyzeUseCase) Reports(ctx context.Context, limit int) ([]*model.Report, error) {
	if uc.reports == nil {
		return []*model.Report{}, nil
	}
	reports, err := uc.reports.List(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list reports", goerr.V("limit", limit))
	}
	return reports, nil
}
