package async

import (
	"context"
	"fmt"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/errutil"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs handler in a new goroutine, detached from the caller's cancellation.
// The caller's logger is carried over. Errors and panics are logged and reported.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := goerr.New("panic in async handler", goerr.V("panic", fmt.Sprint(r)))
				_ = errutil.Handle(bgCtx, err, "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}
