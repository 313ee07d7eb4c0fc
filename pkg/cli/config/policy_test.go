package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/cli/config"
	domainConfig "github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestParsePolicy(t *testing.T) {
	t.Run("empty document keeps defaults", func(t *testing.T) {
		policy, err := config.ParsePolicy(nil)
		gt.NoError(t, err).Required()
		gt.Value(t, policy).Equal(domainConfig.DefaultPolicy())
	})

	t.Run("overrides selected keys", func(t *testing.T) {
		policy, err := config.ParsePolicy([]byte(`
top_k = 8
stage_timeout = "15s"
embargoed_destinations = ["Iran"]
high_severity_reasons = ["ns", "MT 1"]
notify_risk_level = "medium"
`))
		gt.NoError(t, err).Required()
		gt.Value(t, policy.TopK).Equal(8)
		gt.Value(t, policy.StageTimeout).Equal(15 * time.Second)
		gt.Value(t, policy.EmbargoedDestinations).Equal([]string{"Iran"})
		gt.Value(t, policy.HighSeverityReasons).Equal([]types.ControlReason{"NS", "MT1"})
		gt.Value(t, policy.NotifyRiskLevel).Equal(types.RiskLevelMedium)
		gt.Value(t, policy.MaxInputChars).Equal(domainConfig.DefaultPolicy().MaxInputChars)
	})

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown key", content: `max_chars = 10`},
		{name: "zero top_k", content: `top_k = 0`},
		{name: "top_k too large", content: `top_k = 500`},
		{name: "negative input limit", content: `max_input_chars = -1`},
		{name: "malformed timeout", content: `stage_timeout = "soon"`},
		{name: "negative timeout", content: `stage_timeout = "-5s"`},
		{name: "temperature out of range", content: `exception_temperature = 3.5`},
		{name: "empty embargo entry", content: `embargoed_destinations = [""]`},
		{name: "blank severity reason", content: `high_severity_reasons = [" "]`},
		{name: "invalid notify level", content: `notify_risk_level = "critical"`},
		{name: "broken TOML", content: `top_k = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ParsePolicy([]byte(tt.content))
			gt.Error(t, err).Is(config.ErrInvalidPolicy)
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	t.Run("loads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		gt.NoError(t, os.WriteFile(path, []byte(`max_tokens = 1024`), 0600)).Required()

		policy, err := config.LoadPolicy(path)
		gt.NoError(t, err).Required()
		gt.Value(t, policy.MaxTokens).Equal(1024)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadPolicy(filepath.Join(t.TempDir(), "missing.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("flag without path returns defaults", func(t *testing.T) {
		policy, err := config.NewPolicyForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, policy).Equal(domainConfig.DefaultPolicy())
	})
}

func TestSamplePolicy(t *testing.T) {
	policy, err := config.LoadPolicy(filepath.Join("testdata", "policy.toml"))
	gt.NoError(t, err).Required()
	gt.Value(t, policy.NotifyRiskLevel).Equal(types.RiskLevelHigh)
	gt.Bool(t, policy.IsHighSeverity("NS1")).True()
}
