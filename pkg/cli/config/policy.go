package config

import (
	"bytes"
	"errors"
	"os"
	"time"

	domainConfig "github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/model/config"
	"github.com/OSUGIYAMA/export-control-ai-assistant/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// PolicyFile is the TOML representation of the pipeline policy.
// Keys that are absent keep their default values.
type PolicyFile struct {
	MaxInputChars        int    `toml:"max_input_chars"`
	MaxItemChars         int    `toml:"max_item_chars"`
	CatalogItemsPerGroup int    `toml:"catalog_items_per_group"`
	CatalogPromptChars   int    `toml:"catalog_prompt_chars"`
	ContextChars         int    `toml:"context_chars"`
	TopK                 int    `toml:"top_k"`
	StageTimeout         string `toml:"stage_timeout"`

	ClassificationTemperature float64 `toml:"classification_temperature"`
	ExceptionTemperature      float64 `toml:"exception_temperature"`
	MaxTokens                 int     `toml:"max_tokens"`

	EmbargoedDestinations []string `toml:"embargoed_destinations"`
	HighSeverityReasons   []string `toml:"high_severity_reasons"`
	NotifyRiskLevel       string   `toml:"notify_risk_level"`
}

// newPolicyFile fills the scalar keys from p. List keys stay nil so that a
// document value replaces the default instead of extending it.
func newPolicyFile(p *domainConfig.Policy) *PolicyFile {
	return &PolicyFile{
		MaxInputChars:             p.MaxInputChars,
		MaxItemChars:              p.MaxItemChars,
		CatalogItemsPerGroup:      p.CatalogItemsPerGroup,
		CatalogPromptChars:        p.CatalogPromptChars,
		ContextChars:              p.ContextChars,
		TopK:                      p.TopK,
		StageTimeout:              p.StageTimeout.String(),
		ClassificationTemperature: p.ClassificationTemperature,
		ExceptionTemperature:      p.ExceptionTemperature,
		MaxTokens:                 p.MaxTokens,
		NotifyRiskLevel:           p.NotifyRiskLevel.String(),
	}
}

func (p *PolicyFile) fillListDefaults(defaults *domainConfig.Policy) {
	if p.EmbargoedDestinations == nil {
		p.EmbargoedDestinations = append([]string(nil), defaults.EmbargoedDestinations...)
	}
	if p.HighSeverityReasons == nil {
		for _, r := range defaults.HighSeverityReasons {
			p.HighSeverityReasons = append(p.HighSeverityReasons, r.String())
		}
	}
}

const maxTopK = 50

// Validate checks if the PolicyFile is valid
func (p *PolicyFile) Validate() error {
	for name, v := range map[string]int{
		"max_input_chars":         p.MaxInputChars,
		"max_item_chars":          p.MaxItemChars,
		"catalog_items_per_group": p.CatalogItemsPerGroup,
		"catalog_prompt_chars":    p.CatalogPromptChars,
		"context_chars":           p.ContextChars,
		"max_tokens":              p.MaxTokens,
	} {
		if v <= 0 {
			return goerr.Wrap(ErrInvalidPolicy, "value must be positive", goerr.V(FieldKey, name), goerr.V(ValueKey, v))
		}
	}

	if p.TopK < 1 || p.TopK > maxTopK {
		return goerr.Wrap(ErrInvalidPolicy, "top_k must be between 1 and 50", goerr.V(ValueKey, p.TopK))
	}

	if d, err := time.ParseDuration(p.StageTimeout); err != nil {
		return goerr.Wrap(errors.Join(ErrInvalidPolicy, err), "invalid stage_timeout", goerr.V(ValueKey, p.StageTimeout))
	} else if d < 0 {
		return goerr.Wrap(ErrInvalidPolicy, "stage_timeout must not be negative", goerr.V(ValueKey, p.StageTimeout))
	}

	for name, v := range map[string]float64{
		"classification_temperature": p.ClassificationTemperature,
		"exception_temperature":      p.ExceptionTemperature,
	} {
		if v < 0 || v > 2 {
			return goerr.Wrap(ErrInvalidPolicy, "temperature must be between 0 and 2", goerr.V(FieldKey, name), goerr.V(ValueKey, v))
		}
	}

	for _, d := range p.EmbargoedDestinations {
		if d == "" {
			return goerr.Wrap(ErrInvalidPolicy, "embargoed destination must not be empty")
		}
	}

	for _, r := range p.HighSeverityReasons {
		if types.NormalizeControlReason(r) == "" {
			return goerr.Wrap(ErrInvalidPolicy, "high severity reason must not be empty")
		}
	}

	if _, err := types.ParseRiskLevel(p.NotifyRiskLevel); err != nil {
		return goerr.Wrap(errors.Join(ErrInvalidPolicy, err), "invalid notify_risk_level", goerr.V(ValueKey, p.NotifyRiskLevel))
	}

	return nil
}

// ToDomainPolicy converts the file representation. It must be called after Validate.
func (p *PolicyFile) ToDomainPolicy() *domainConfig.Policy {
	timeout, _ := time.ParseDuration(p.StageTimeout)
	level, _ := types.ParseRiskLevel(p.NotifyRiskLevel)

	reasons := make([]types.ControlReason, len(p.HighSeverityReasons))
	for i, r := range p.HighSeverityReasons {
		reasons[i] = types.NormalizeControlReason(r)
	}

	return &domainConfig.Policy{
		MaxInputChars:             p.MaxInputChars,
		MaxItemChars:              p.MaxItemChars,
		CatalogItemsPerGroup:      p.CatalogItemsPerGroup,
		CatalogPromptChars:        p.CatalogPromptChars,
		ContextChars:              p.ContextChars,
		TopK:                      p.TopK,
		StageTimeout:              timeout,
		ClassificationTemperature: p.ClassificationTemperature,
		ExceptionTemperature:      p.ExceptionTemperature,
		MaxTokens:                 p.MaxTokens,
		EmbargoedDestinations:     append([]string(nil), p.EmbargoedDestinations...),
		HighSeverityReasons:       reasons,
		NotifyRiskLevel:           level,
	}
}

// ParsePolicy decodes a policy document over the defaults. Unknown keys are rejected.
func ParsePolicy(data []byte) (*domainConfig.Policy, error) {
	defaults := domainConfig.DefaultPolicy()
	file := newPolicyFile(defaults)

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(file); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidPolicy, err), "failed to parse policy TOML")
	}
	file.fillListDefaults(defaults)

	if err := file.Validate(); err != nil {
		return nil, err
	}

	return file.ToDomainPolicy(), nil
}

// LoadPolicy loads the policy from a TOML file
func LoadPolicy(path string) (*domainConfig.Policy, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "policy file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V(ConfigPathKey, path))
	}

	policy, err := ParsePolicy(data)
	if err != nil {
		return nil, goerr.Wrap(err, "policy validation failed", goerr.V(ConfigPathKey, path))
	}
	return policy, nil
}

// Policy holds the CLI flag for the policy file
type Policy struct {
	path string
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Policy TOML file. Built-in defaults are used when empty",
			Sources:     cli.EnvVars("EXPORT_CONTROL_POLICY"),
			Destination: &p.path,
		},
	}
}

// Configure loads the policy file, or returns the defaults when no file is set
func (p *Policy) Configure() (*domainConfig.Policy, error) {
	if p.path == "" {
		return domainConfig.DefaultPolicy(), nil
	}
	return LoadPolicy(p.path)
}
