package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/utils/safe"
	"github.com/m-mizutani/gt"
)

type closer struct {
	called bool
	err    error
}

func (c *closer) Close() error {
	c.called = true
	return c.err
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	c := &closer{err: errors.New("already closed")}
	safe.Close(ctx, c)
	gt.B(t, c.called).True()

	safe.Close(ctx, nil)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	safe.Write(context.Background(), &buf, []byte("report"))
	gt.V(t, buf.String()).Equal("report")

	safe.Write(context.Background(), nil, []byte("ignored"))
}
