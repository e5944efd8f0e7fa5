package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/variscan/internal/constants"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from the constants package to ensure a single source of truth.
type DefaultConfigValues struct {
	CleanupDerivedCopies bool
	LeadingVariantID     string
	IntegrationVariantID string

	// Matching
	StructuralThreshold float64
	ParallelThreshold   int
	MaxWorkers          int
	CostModel           string
	EmitMoves           bool

	// Output
	OutputFormat      string
	SnapshotFragments bool

	// Input
	IncludePatterns []string
}

// newDefaultConfigValues creates a DefaultConfigValues populated from constants.
func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		LeadingVariantID:     constants.DefaultLeadingVariantID,
		IntegrationVariantID: constants.DefaultIntegrationVariantID,
		StructuralThreshold:  constants.DefaultStructuralThreshold,
		ParallelThreshold:    constants.DefaultParallelThreshold,
		MaxWorkers:           constants.DefaultMaxWorkers,
		CostModel:            constants.DefaultCostModel,
		OutputFormat:         constants.DefaultOutputFormat,
		IncludePatterns:      []string{constants.DefaultIncludePattern},
	}
}

// GenerateDefaultConfigTOML renders the default config template and returns
// the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}

// LoadDefaultConfigFromTOML parses the rendered default config and returns the full Config struct
func LoadDefaultConfigFromTOML() (*Config, error) {
	configTOML, err := GenerateDefaultConfigTOML()
	if err != nil {
		return nil, err
	}

	var tomlCfg VariscanTomlConfig
	if err := toml.Unmarshal([]byte(configTOML), &tomlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	cfg := DefaultConfig()
	NewTomlConfigLoader().mergeTomlConfig(cfg, &tomlCfg)
	return cfg, nil
}
