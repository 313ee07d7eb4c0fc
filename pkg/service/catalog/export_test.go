package catalog

import (
	"context"
	"io"
)

// WithCloudStorageOpener replaces the Cloud Storage reader for testing
func WithCloudStorageOpener(fn func(ctx context.Context, bucket, object string) (io.ReadCloser, error)) Option {
	return func(l *Loader) {
		l.openGCS = fn
	}
}
