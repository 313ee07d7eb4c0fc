package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/async"
	"github.com/m-mizutani/gt"
)

func TestDispatch(t *testing.T) {
	t.Run("runs handler with a live context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		async.Dispatch(ctx, func(ctx context.Context) error {
			done <- ctx.Err()
			return nil
		})
		cancel()

		select {
		case err := <-done:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler was not called")
		}
	})

	t.Run("survives panic and error", func(t *testing.T) {
		done := make(chan struct{}, 2)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			panic("boom")
		})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			return errors.New("failed")
		})

		for i := 0; i < 2; i++ {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("handler was not called")
			}
		}
	})
}
