package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

const (
	precedentCollection = "precedents"
	reportCollection    = "reports"
)

type Firestore struct {
	client    *firestore.Client
	precedent *precedentRepository
	report    *reportRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, e.g. to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.precedent.collection = prefix + precedentCollection
		f.report.collection = prefix + reportCollection
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:    client,
		precedent: newPrecedentRepository(client),
		report:    newReportRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Precedent() interfaces.PrecedentRepository {
	return f.precedent
}

func (f *Firestore) Report() interfaces.ReportRepository {
	return f.report
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
