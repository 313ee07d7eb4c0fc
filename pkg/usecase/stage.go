package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// withStageTimeout bounds one external call. A zero timeout leaves ctx unchanged.
func withStageTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// stageError tags err with model.ErrStageTimeout when the deadline was hit and with
// model.ErrService otherwise
func stageError(err error, msg string, opts ...goerr.Option) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return goerr.Wrap(errors.Join(model.ErrStageTimeout, model.ErrService, err), msg, opts...)
	}
	if errors.Is(err, model.ErrService) {
		return goerr.Wrap(err, msg, opts...)
	}
	return goerr.Wrap(errors.Join(model.ErrService, err), msg, opts...)
}

// stageReason is the short reason recorded on a failed stage
func stageReason(err error, what string) string {
	if errors.Is(err, model.ErrStageTimeout) {
		return what + " timed out"
	}
	return what + " failed"
}
