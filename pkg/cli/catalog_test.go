package cli_test

import (
	"context"
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/cli"
	"github.com/m-mizutani/gt"
)

func TestRun_CatalogCommand(t *testing.T) {
	run := func(sub string, args ...string) error {
		full := append([]string{"export-control", "catalog", sub, "--no-color"}, catalogArgs()...)
		full = append(full, args...)
		return cli.Run(context.Background(), full, "test")
	}

	t.Run("search by keyword", func(t *testing.T) {
		gt.NoError(t, run("search", "encryption"))
	})

	t.Run("search as JSON", func(t *testing.T) {
		gt.NoError(t, run("search", "--json", "5A002"))
	})

	t.Run("search without query", func(t *testing.T) {
		gt.Error(t, run("search"))
	})

	t.Run("show a code", func(t *testing.T) {
		gt.NoError(t, run("show", "5A002"))
	})

	t.Run("show an unknown code", func(t *testing.T) {
		gt.Error(t, run("show", "9Z999"))
	})

	t.Run("show needs one code", func(t *testing.T) {
		gt.Error(t, run("show"))
	})
}
