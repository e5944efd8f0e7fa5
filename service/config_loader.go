package service

import (
	"log/slog"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/config"
)

// ConfigurationLoaderImpl implements the DiffConfigurationLoader interface
type ConfigurationLoaderImpl struct {
	logger *slog.Logger
}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader(logger *slog.Logger) *ConfigurationLoaderImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigurationLoaderImpl{logger: logger}
}

// LoadConfig loads configuration from the specified path. An empty path
// discovers .variscan.toml from the working directory upwards.
func (c *ConfigurationLoaderImpl) LoadConfig(path string) (*domain.DiffRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg.ToDiffRequest(nil), nil
}

// LoadDefaultConfig loads the discovered configuration, falling back to the
// built-in defaults when it cannot be loaded
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *domain.DiffRequest {
	req, err := c.LoadConfig("")
	if err != nil {
		c.logger.Warn("ignoring configuration, using defaults", "error", err)
		return config.DefaultConfig().ToDiffRequest(nil)
	}
	return req
}

// MergeConfig overlays the command line request on the configured one.
// Paths and writers always come from the command line; every other setting
// only when its flag was set explicitly.
func (c *ConfigurationLoaderImpl) MergeConfig(base, override *domain.DiffRequest, flags *config.FlagTracker) *domain.DiffRequest {
	merged := *base

	merged.LeftPath = override.LeftPath
	merged.RightPath = override.RightPath
	merged.ConfigPath = override.ConfigPath
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	merged.OutputPath = config.Merge(flags, base.OutputPath, override.OutputPath, "output")

	merged.IncludePatterns = config.MergeStringSlice(flags, base.IncludePatterns, override.IncludePatterns, "include")
	merged.ExcludePatterns = config.MergeStringSlice(flags, base.ExcludePatterns, override.ExcludePatterns, "exclude")
	merged.ClassifierNormalization = config.MergeStringSlice(flags, base.ClassifierNormalization, override.ClassifierNormalization, "classifier-normalization")
	if flags != nil && flags.WasSet("package-normalization") && len(override.PackageNormalization) > 0 {
		merged.PackageNormalization = override.PackageNormalization
	}

	merged.CleanupDerivedCopies = config.Merge(flags, base.CleanupDerivedCopies, override.CleanupDerivedCopies, "cleanup-derived-copies")
	merged.CleanupDerivedCopiesCleanImports = config.Merge(flags, base.CleanupDerivedCopiesCleanImports, override.CleanupDerivedCopiesCleanImports, "clean-imports")

	merged.LeadingVariantID = config.Merge(flags, base.LeadingVariantID, override.LeadingVariantID, "leading-variant")
	merged.IntegrationVariantID = config.Merge(flags, base.IntegrationVariantID, override.IntegrationVariantID, "integration-variant")

	merged.StructuralThreshold = config.Merge(flags, base.StructuralThreshold, override.StructuralThreshold, "structural-threshold")
	merged.ParallelThreshold = config.Merge(flags, base.ParallelThreshold, override.ParallelThreshold, "parallel-threshold")
	merged.MaxWorkers = config.Merge(flags, base.MaxWorkers, override.MaxWorkers, "max-workers")
	merged.CostModel = config.Merge(flags, base.CostModel, override.CostModel, "cost-model")
	merged.EmitMoves = config.Merge(flags, base.EmitMoves, override.EmitMoves, "emit-moves")

	merged.OutputFormat = config.Merge(flags, base.OutputFormat, override.OutputFormat, "format")
	merged.SnapshotFragments = config.Merge(flags, base.SnapshotFragments, override.SnapshotFragments, "snapshot")

	return &merged
}
