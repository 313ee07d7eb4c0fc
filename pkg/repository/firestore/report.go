package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// reportDoc keeps the queryable verdict as fields and the full report as JSON,
// since stage errors are not storable values
type reportDoc struct {
	ID                   model.ReportID `firestore:"ID"`
	CreatedAt            time.Time      `firestore:"CreatedAt"`
	RiskLevel            string         `firestore:"RiskLevel"`
	LicenseDetermination string         `firestore:"LicenseDetermination"`
	ClassificationCode   string         `firestore:"ClassificationCode"`
	Destination          string         `firestore:"Destination"`
	Body                 string         `firestore:"Body"`
}

type reportRepository struct {
	client     *firestore.Client
	collection string
}

func newReportRepository(client *firestore.Client) *reportRepository {
	return &reportRepository{client: client, collection: reportCollection}
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

	doc := &reportDoc{
		ID:          report.ID,
		CreatedAt:   report.CreatedAt,
		Destination: report.Fields.Destination,
		Body:        string(body),
	}
	if report.Assessment != nil {
		doc.RiskLevel = report.Assessment.RiskLevel.String()
		doc.LicenseDetermination = report.Assessment.LicenseDetermination.String()
	}
	if c := report.Classification.Value; c != nil {
		doc.ClassificationCode = c.Code
	}

	if _, err := r.client.Collection(r.collection).Doc(string(report.ID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put report", goerr.V(model.ReportIDKey, report.ID))
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id model.ReportID) (*model.Report, error) {
	doc, err := r.client.Collection(r.collection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "report not found", goerr.V(model.ReportIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get report", goerr.V(model.ReportIDKey, id))
	}

	var d reportDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal report document", goerr.V(model.ReportIDKey, id))
	}
	return decodeReport(&d)
}

func (r *reportRepository) List(ctx context.Context, limit int) ([]*model.Report, error) {
	q := r.client.Collection(r.collection).OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	reports := make([]*model.Report, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate reports")
		}

		var d reportDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal report document")
		}
		report, err := decodeReport(&d)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

func decodeReport(d *reportDoc) (*model.Report, error) {
	var report model.Report
	if err := json.Unmarshal([]byte(d.Body), &report); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal report", goerr.V(model.ReportIDKey, d.ID))
	}
	return &report, nil
}
