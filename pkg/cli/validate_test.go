package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/cli"
	"github.com/m-mizutani/gt"
)

func catalogArgs() []string {
	dir := filepath.Join("..", "service", "catalog", "testdata")
	return []string{
		"--classification-catalog", filepath.Join(dir, "classification.json"),
		"--control-matrix", filepath.Join(dir, "matrix.csv"),
		"--restricted-party-registry", filepath.Join(dir, "registry.csv"),
	}
}

func TestRun_ValidateCommand(t *testing.T) {
	t.Run("valid catalogs and default policy", func(t *testing.T) {
		args := append([]string{"export-control", "validate"}, catalogArgs()...)
		gt.NoError(t, cli.Run(context.Background(), args, "test"))
	})

	t.Run("invalid policy", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		gt.NoError(t, os.WriteFile(path, []byte(`top_k = 0`), 0o600)).Required()

		args := append([]string{"export-control", "validate", "--policy", path}, catalogArgs()...)
		gt.Error(t, cli.Run(context.Background(), args, "test"))
	})

	t.Run("missing catalog", func(t *testing.T) {
		args := []string{"export-control", "validate",
			"--classification-catalog", filepath.Join(t.TempDir(), "missing.json"),
			"--control-matrix", "unused.csv",
			"--restricted-party-registry", "unused.csv",
		}
		gt.Error(t, cli.Run(context.Background(), args, "test"))
	})
}
