package config

import (
	"io"

	"github.com/ludo-technologies/variscan/domain"
)

// ToDiffRequest converts the configuration to a domain DiffRequest. Paths
// are left empty; they always come from the caller.
func (c *Config) ToDiffRequest(outputWriter io.Writer) *domain.DiffRequest {
	var outputFormat domain.OutputFormat
	switch c.Output.Format {
	case "json":
		outputFormat = domain.OutputFormatJSON
	case "yaml":
		outputFormat = domain.OutputFormatYAML
	default:
		outputFormat = domain.OutputFormatText
	}

	rules := make([]domain.NormalizationRule, 0, len(c.PackageNormalization))
	for _, r := range c.PackageNormalization {
		rules = append(rules, domain.NormalizationRule{Pattern: r.Pattern, Replacement: r.Replacement})
	}

	var cleanImports *bool
	if c.CleanupDerivedCopiesCleanImports != nil {
		cleanImports = BoolPtr(*c.CleanupDerivedCopiesCleanImports)
	}

	return &domain.DiffRequest{
		IncludePatterns: append([]string{}, c.Input.IncludePatterns...),
		ExcludePatterns: append([]string{}, c.Input.ExcludePatterns...),

		PackageNormalization:    rules,
		ClassifierNormalization: append([]string{}, c.ClassifierNormalization...),

		CleanupDerivedCopies:             c.CleanupDerivedCopies,
		CleanupDerivedCopiesCleanImports: cleanImports,

		LeadingVariantID:     c.LeadingVariantID,
		IntegrationVariantID: c.IntegrationVariantID,

		StructuralThreshold: c.Matching.StructuralThreshold,
		ParallelThreshold:   c.Matching.ParallelThreshold,
		MaxWorkers:          c.Matching.MaxWorkers,
		CostModel:           c.Matching.CostModel,
		EmitMoves:           c.Matching.EmitMoves,

		OutputFormat:      outputFormat,
		OutputWriter:      outputWriter,
		SnapshotFragments: c.Output.SnapshotFragments,
	}
}
