package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/variscan/internal/constants"
	"github.com/ludo-technologies/variscan/internal/similarity"
)

// VariscanTomlConfig represents the structure of .variscan.toml
type VariscanTomlConfig struct {
	PackageNormalization             []similarity.PackageRule `toml:"packageNormalization"`
	ClassifierNormalization          []string                 `toml:"classifierNormalization"`
	CleanupDerivedCopies             *bool                    `toml:"cleanupDerivedCopies"`             // pointer to detect unset
	CleanupDerivedCopiesCleanImports *bool                    `toml:"cleanupDerivedCopiesCleanImports"` // pointer to keep the tri-state
	LeadingVariantID                 string                   `toml:"leadingVariantId"`
	IntegrationVariantID             string                   `toml:"integrationVariantId"`

	Matching TomlMatchingConfig `toml:"matching"`
	Output   TomlOutputConfig   `toml:"output"`
	Input    TomlInputConfig    `toml:"input"`
}

// TomlMatchingConfig represents the [matching] section
type TomlMatchingConfig struct {
	StructuralThreshold *float64 `toml:"structuralThreshold"`
	ParallelThreshold   *int     `toml:"parallelThreshold"`
	MaxWorkers          *int     `toml:"maxWorkers"`
	CostModel           string   `toml:"costModel"`
	EmitMoves           *bool    `toml:"emitMoves"`
}

// TomlOutputConfig represents the [output] section
type TomlOutputConfig struct {
	Format            string `toml:"format"`
	SnapshotFragments *bool  `toml:"snapshotFragments"`
}

// TomlInputConfig represents the [input] section
type TomlInputConfig struct {
	IncludePatterns []string `toml:"includePatterns"`
	ExcludePatterns []string `toml:"excludePatterns"`
}

// TomlConfigLoader handles TOML-only configuration loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads the nearest .variscan.toml at or above startDir merged
// over the defaults. Without a config file the defaults are returned.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	configPath, err := findConfigUpwards(startDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return l.LoadFile(configPath)
}

// LoadFile loads one TOML file merged over the defaults
func (l *TomlConfigLoader) LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var tomlCfg VariscanTomlConfig
	if err := toml.Unmarshal(data, &tomlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	l.mergeTomlConfig(cfg, &tomlCfg)
	return cfg, nil
}

// findConfigUpwards walks up the directory tree to find .variscan.toml
func findConfigUpwards(startDir string) (string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, constants.ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// mergeTomlConfig merges .variscan.toml into defaults, using pointer fields
// to tell unset values from zero values
func (l *TomlConfigLoader) mergeTomlConfig(defaults *Config, tomlCfg *VariscanTomlConfig) {
	if len(tomlCfg.PackageNormalization) > 0 {
		defaults.PackageNormalization = tomlCfg.PackageNormalization
	}
	if len(tomlCfg.ClassifierNormalization) > 0 {
		defaults.ClassifierNormalization = tomlCfg.ClassifierNormalization
	}
	if tomlCfg.CleanupDerivedCopies != nil {
		defaults.CleanupDerivedCopies = *tomlCfg.CleanupDerivedCopies
	}
	if tomlCfg.CleanupDerivedCopiesCleanImports != nil {
		defaults.CleanupDerivedCopiesCleanImports = BoolPtr(*tomlCfg.CleanupDerivedCopiesCleanImports)
	}
	if tomlCfg.LeadingVariantID != "" {
		defaults.LeadingVariantID = tomlCfg.LeadingVariantID
	}
	if tomlCfg.IntegrationVariantID != "" {
		defaults.IntegrationVariantID = tomlCfg.IntegrationVariantID
	}

	// Matching
	if tomlCfg.Matching.StructuralThreshold != nil {
		defaults.Matching.StructuralThreshold = *tomlCfg.Matching.StructuralThreshold
	}
	if tomlCfg.Matching.ParallelThreshold != nil {
		defaults.Matching.ParallelThreshold = *tomlCfg.Matching.ParallelThreshold
	}
	if tomlCfg.Matching.MaxWorkers != nil {
		defaults.Matching.MaxWorkers = *tomlCfg.Matching.MaxWorkers
	}
	if tomlCfg.Matching.CostModel != "" {
		defaults.Matching.CostModel = tomlCfg.Matching.CostModel
	}
	if tomlCfg.Matching.EmitMoves != nil {
		defaults.Matching.EmitMoves = *tomlCfg.Matching.EmitMoves
	}

	// Output
	if tomlCfg.Output.Format != "" {
		defaults.Output.Format = tomlCfg.Output.Format
	}
	if tomlCfg.Output.SnapshotFragments != nil {
		defaults.Output.SnapshotFragments = *tomlCfg.Output.SnapshotFragments
	}

	// Input
	if len(tomlCfg.Input.IncludePatterns) > 0 {
		defaults.Input.IncludePatterns = tomlCfg.Input.IncludePatterns
	}
	if len(tomlCfg.Input.ExcludePatterns) > 0 {
		defaults.Input.ExcludePatterns = tomlCfg.Input.ExcludePatterns
	}
}

// GetSupportedConfigFiles returns the config file names the loader discovers
func (l *TomlConfigLoader) GetSupportedConfigFiles() []string {
	return []string{constants.ConfigFileName}
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue dereferences b, falling back to defaultVal when unset
func BoolValue(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}
