package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const gcsScheme = "gs://"

// Sources names where each catalog is read from. A source is a local path or gs://bucket/object.
type Sources struct {
	Classification string
	Matrix         string
	Registry       string
}

// Loader reads the reference catalogs
type Loader struct {
	openGCS func(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// Option is a functional option for Loader
type Option func(*Loader)

// New creates a Loader. Cloud Storage clients are created on demand.
func New(opts ...Option) *Loader {
	l := &Loader{
		openGCS: openCloudStorage,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all three catalogs. Any failure wraps model.ErrCatalogLoad.
func (l *Loader) Load(ctx context.Context, src Sources) (*model.ReferenceData, error) {
	if src.Classification == "" || src.Matrix == "" || src.Registry == "" {
		return nil, goerr.Wrap(model.ErrCatalogLoad, "all catalog sources are required",
			goerr.V("classification", src.Classification),
			goerr.V("matrix", src.Matrix),
			goerr.V("registry", src.Registry))
	}

	classification, err := loadFrom(ctx, l, src.Classification, ParseClassification)
	if err != nil {
		return nil, err
	}
	matrix, err := loadFrom(ctx, l, src.Matrix, ParseControlMatrix)
	if err != nil {
		return nil, err
	}
	registry, err := loadFrom(ctx, l, src.Registry, ParseRegistry)
	if err != nil {
		return nil, err
	}

	data := &model.ReferenceData{
		Classification: classification,
		Matrix:         matrix,
		Registry:       registry,
	}
	warnUnmappedReasons(ctx, data)

	logging.From(ctx).Info("reference catalogs loaded",
		slog.Int("classification_entries", classification.Len()),
		slog.Int("destinations", len(matrix.Rows)),
		slog.Int("restricted_parties", registry.Len()),
	)
	return data, nil
}

// Open returns a reader for a local path or a gs:// object
func (l *Loader) Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, gcsScheme) {
		bucket, object, ok := strings.Cut(strings.TrimPrefix(source, gcsScheme), "/")
		if !ok || bucket == "" || object == "" {
			return nil, goerr.Wrap(model.ErrCatalogLoad, "invalid Cloud Storage path", goerr.V(model.SourceKey, source))
		}
		r, err := l.openGCS(ctx, bucket, object)
		if err != nil {
			return nil, loadError(err, "failed to open Cloud Storage object", goerr.V(model.SourceKey, source))
		}
		return r, nil
	}

	// #nosec G304 -- path comes from CLI flag, not user input
	f, err := os.Open(source)
	if err != nil {
		return nil, loadError(err, "failed to open catalog file", goerr.V(model.SourceKey, source))
	}
	return f, nil
}

func loadFrom[T any](ctx context.Context, l *Loader, source string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	r, err := l.Open(ctx, source)
	if err != nil {
		return zero, err
	}
	defer safe.Close(ctx, r)

	v, err := parse(r)
	if err != nil {
		return zero, goerr.Wrap(err, "failed to parse catalog", goerr.V(model.SourceKey, source))
	}
	return v, nil
}

func openCloudStorage(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		safe.Close(ctx, client)
		return nil, goerr.Wrap(err, "failed to read object", goerr.V("bucket", bucket), goerr.V("object", object))
	}
	return &gcsReader{Reader: r, client: client}, nil
}

// gcsReader closes the client together with the object reader
type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// warnUnmappedReasons logs catalog control reasons that no matrix column covers.
// Such reasons evaluate to unknown at analysis time.
func warnUnmappedReasons(ctx context.Context, data *model.ReferenceData) {
	seen := make(map[types.ControlReason]struct{})
	var unmapped []string
	for _, e := range data.Classification.Entries() {
		for _, r := range e.ControlReasons {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			if !data.Matrix.HasColumnFor(r) {
				unmapped = append(unmapped, r.String())
			}
		}
	}
	if len(unmapped) > 0 {
		logging.From(ctx).Warn("control reasons without matrix column", slog.Any("reasons", unmapped))
	}
}

func loadError(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(model.ErrCatalogLoad, err), msg, opts...)
}
