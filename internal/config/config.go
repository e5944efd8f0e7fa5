package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/variscan/internal/constants"
	"github.com/ludo-technologies/variscan/internal/similarity"
)

// Config represents the main configuration structure
type Config struct {
	// PackageNormalization rewrites package names before comparison.
	// Rules are tried in order and the first match applies.
	PackageNormalization []similarity.PackageRule `mapstructure:"packageNormalization" yaml:"packageNormalization" json:"packageNormalization"`

	// ClassifierNormalization holds wildcard patterns such as "*Custom"
	ClassifierNormalization []string `mapstructure:"classifierNormalization" yaml:"classifierNormalization" json:"classifierNormalization"`

	// CleanupDerivedCopies suppresses differences caused by renamed copies
	CleanupDerivedCopies bool `mapstructure:"cleanupDerivedCopies" yaml:"cleanupDerivedCopies" json:"cleanupDerivedCopies"`

	// CleanupDerivedCopiesCleanImports also suppresses import differences
	// inside derived copies. Unset follows CleanupDerivedCopies.
	CleanupDerivedCopiesCleanImports *bool `mapstructure:"cleanupDerivedCopiesCleanImports" yaml:"cleanupDerivedCopiesCleanImports,omitempty" json:"cleanupDerivedCopiesCleanImports,omitempty"`

	// LeadingVariantID tags the variants taken from the right tree
	LeadingVariantID string `mapstructure:"leadingVariantId" yaml:"leadingVariantId" json:"leadingVariantId"`

	// IntegrationVariantID tags the variants taken from the left tree
	IntegrationVariantID string `mapstructure:"integrationVariantId" yaml:"integrationVariantId" json:"integrationVariantId"`

	Matching MatchingConfig `mapstructure:"matching" yaml:"matching" json:"matching"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Input    InputConfig    `mapstructure:"input" yaml:"input" json:"input"`
}

// MatchingConfig holds the match engine parameters
type MatchingConfig struct {
	// StructuralThreshold is the minimum tree edit similarity for pairing
	// statements the similarity rules kept apart
	StructuralThreshold float64 `mapstructure:"structuralThreshold" yaml:"structuralThreshold" json:"structuralThreshold"`

	// ParallelThreshold is the list length from which correspondence lookup
	// runs on a worker pool. 0 disables parallel lookup.
	ParallelThreshold int `mapstructure:"parallelThreshold" yaml:"parallelThreshold" json:"parallelThreshold"`

	// MaxWorkers bounds the worker pools; 0 means one per CPU
	MaxWorkers int `mapstructure:"maxWorkers" yaml:"maxWorkers" json:"maxWorkers"`

	// CostModel selects the tree edit costs of the structural fallback:
	// uniform or java
	CostModel string `mapstructure:"costModel" yaml:"costModel" json:"costModel"`

	// EmitMoves reports reordered statements as MOVE differences
	EmitMoves bool `mapstructure:"emitMoves" yaml:"emitMoves" json:"emitMoves"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml
	Format string `mapstructure:"format" yaml:"format" json:"format"`

	// SnapshotFragments stores a detached copy of every variant fragment
	SnapshotFragments bool `mapstructure:"snapshotFragments" yaml:"snapshotFragments" json:"snapshotFragments"`
}

// InputConfig selects the files read from variant directories
type InputConfig struct {
	IncludePatterns []string `mapstructure:"includePatterns" yaml:"includePatterns" json:"includePatterns"`
	ExcludePatterns []string `mapstructure:"excludePatterns" yaml:"excludePatterns" json:"excludePatterns"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PackageNormalization:    []similarity.PackageRule{},
		ClassifierNormalization: []string{},
		LeadingVariantID:        constants.DefaultLeadingVariantID,
		IntegrationVariantID:    constants.DefaultIntegrationVariantID,
		Matching: MatchingConfig{
			StructuralThreshold: constants.DefaultStructuralThreshold,
			ParallelThreshold:   constants.DefaultParallelThreshold,
			MaxWorkers:          constants.DefaultMaxWorkers,
			CostModel:           constants.DefaultCostModel,
		},
		Output: OutputConfig{
			Format: constants.DefaultOutputFormat,
		},
		Input: InputConfig{
			IncludePatterns: []string{constants.DefaultIncludePattern},
			ExcludePatterns: []string{},
		},
	}
}

// LoadConfig loads configuration from file or returns default config.
// TOML files go through the TOML loader; YAML and JSON files through viper.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig()
	}
	if configPath == "" {
		return DefaultConfig(), nil
	}

	var (
		cfg *Config
		err error
	)
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		cfg, err = NewTomlConfigLoader().LoadFile(configPath)
	} else {
		cfg, err = loadWithViper(configPath)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadWithViper(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// findDefaultConfig looks for .variscan.toml upwards from the working
// directory, then for YAML or JSON files in the working and home directories
func findDefaultConfig() string {
	if cwd, err := os.Getwd(); err == nil {
		if path, err := findConfigUpwards(cwd); err == nil {
			return path
		}
	}

	candidates := []string{
		"variscan.yaml",
		"variscan.yml",
		".variscan.yaml",
		".variscan.yml",
		"variscan.json",
		".variscan.json",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		for _, candidate := range candidates {
			path := filepath.Join(home, candidate)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Matching.StructuralThreshold <= 0 || c.Matching.StructuralThreshold > 1 {
		return fmt.Errorf("matching.structuralThreshold must be in (0, 1], got %g", c.Matching.StructuralThreshold)
	}
	if c.Matching.ParallelThreshold < 0 {
		return fmt.Errorf("matching.parallelThreshold must be >= 0, got %d", c.Matching.ParallelThreshold)
	}
	if c.Matching.MaxWorkers < 0 {
		return fmt.Errorf("matching.maxWorkers must be >= 0, got %d", c.Matching.MaxWorkers)
	}
	switch c.Matching.CostModel {
	case constants.CostModelUniform, constants.CostModelJava:
	default:
		return fmt.Errorf("matching.costModel must be %q or %q, got %q",
			constants.CostModelUniform, constants.CostModelJava, c.Matching.CostModel)
	}

	if c.LeadingVariantID == "" || c.IntegrationVariantID == "" {
		return fmt.Errorf("leadingVariantId and integrationVariantId cannot be empty")
	}
	if c.LeadingVariantID == c.IntegrationVariantID {
		return fmt.Errorf("leadingVariantId and integrationVariantId must differ, both are %q", c.LeadingVariantID)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml", c.Output.Format)
	}

	if len(c.Input.IncludePatterns) == 0 {
		return fmt.Errorf("input.includePatterns cannot be empty")
	}
	for _, pattern := range append(append([]string{}, c.Input.IncludePatterns...), c.Input.ExcludePatterns...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid input pattern %q", pattern)
		}
	}

	return nil
}
