package domain

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/variscan/internal/constants"
)

// NormalizationRule rewrites package names matching Pattern with Replacement
type NormalizationRule struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// DiffRequest represents a request to build a variability model from a
// left (base) and a right (derived) variant
type DiffRequest struct {
	// Input parameters. Each side is a directory of sources, a single
	// source file or an AST document (.yaml, .yml, .json).
	LeftPath        string   `json:"left_path" yaml:"left_path"`
	RightPath       string   `json:"right_path" yaml:"right_path"`
	IncludePatterns []string `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns" yaml:"exclude_patterns"`

	// Normalization
	PackageNormalization    []NormalizationRule `json:"package_normalization" yaml:"package_normalization"`
	ClassifierNormalization []string            `json:"classifier_normalization" yaml:"classifier_normalization"`

	// Derived-copy cleanup
	CleanupDerivedCopies             bool  `json:"cleanup_derived_copies" yaml:"cleanup_derived_copies"`
	CleanupDerivedCopiesCleanImports *bool `json:"cleanup_derived_copies_clean_imports,omitempty" yaml:"cleanup_derived_copies_clean_imports,omitempty"`

	// Variant identifiers
	LeadingVariantID     string `json:"leading_variant_id" yaml:"leading_variant_id"`
	IntegrationVariantID string `json:"integration_variant_id" yaml:"integration_variant_id"`

	// Matching
	StructuralThreshold float64 `json:"structural_threshold" yaml:"structural_threshold"`
	ParallelThreshold   int     `json:"parallel_threshold" yaml:"parallel_threshold"`
	MaxWorkers          int     `json:"max_workers" yaml:"max_workers"`
	CostModel           string  `json:"cost_model,omitempty" yaml:"cost_model,omitempty"`
	EmitMoves           bool    `json:"emit_moves" yaml:"emit_moves"`

	// Output configuration
	OutputFormat      OutputFormat `json:"output_format" yaml:"output_format"`
	OutputWriter      io.Writer    `json:"-" yaml:"-"`
	OutputPath        string       `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	SnapshotFragments bool         `json:"snapshot_fragments" yaml:"snapshot_fragments"`

	// Configuration file
	ConfigPath string `json:"config_path,omitempty" yaml:"config_path,omitempty"`
}

// DefaultDiffRequest returns a request carrying the default settings
func DefaultDiffRequest() *DiffRequest {
	return &DiffRequest{
		IncludePatterns:      []string{constants.DefaultIncludePattern},
		ExcludePatterns:      []string{},
		LeadingVariantID:     constants.DefaultLeadingVariantID,
		IntegrationVariantID: constants.DefaultIntegrationVariantID,
		StructuralThreshold:  constants.DefaultStructuralThreshold,
		ParallelThreshold:    constants.DefaultParallelThreshold,
		MaxWorkers:           constants.DefaultMaxWorkers,
		CostModel:            constants.DefaultCostModel,
		OutputFormat:         OutputFormat(constants.DefaultOutputFormat),
	}
}

// Validate validates a diff request
func (req *DiffRequest) Validate() error {
	if req.LeftPath == "" || req.RightPath == "" {
		return NewValidationError("both a left and a right variant path are required")
	}

	if req.StructuralThreshold <= 0.0 || req.StructuralThreshold > 1.0 {
		return NewValidationError("structural_threshold must be in (0.0, 1.0]")
	}

	if req.ParallelThreshold < 0 {
		return NewValidationError("parallel_threshold must be >= 0")
	}

	if req.MaxWorkers < 0 {
		return NewValidationError("max_workers must be >= 0")
	}

	switch req.CostModel {
	case "", constants.CostModelUniform, constants.CostModelJava:
	default:
		return NewValidationError(fmt.Sprintf("cost_model must be %q or %q, got %q",
			constants.CostModelUniform, constants.CostModelJava, req.CostModel))
	}

	if req.LeadingVariantID != "" && req.LeadingVariantID == req.IntegrationVariantID {
		return NewValidationError(fmt.Sprintf("leading and integration variant ids must differ, both are %q", req.LeadingVariantID))
	}

	switch req.OutputFormat {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
	default:
		return NewUnsupportedFormatError(string(req.OutputFormat))
	}

	return nil
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *DiffRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil || req.OutputPath != ""
}

// SoftwareElement is the serializable form of a node referenced by the model
type SoftwareElement struct {
	ID            string `json:"id" yaml:"id"`
	Type          string `json:"type" yaml:"type"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	QualifiedName string `json:"qualified_name,omitempty" yaml:"qualified_name,omitempty"`
	Location      string `json:"location,omitempty" yaml:"location,omitempty"`
	Snapshot      bool   `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// String returns a short description of the element
func (e SoftwareElement) String() string {
	name := e.QualifiedName
	if name == "" {
		name = e.Name
	}
	if name == "" {
		return e.Type
	}
	return fmt.Sprintf("%s %s", e.Type, name)
}

// Variant is one alternative of a variation point
type Variant struct {
	ID       string   `json:"id" yaml:"id"`
	Leading  bool     `json:"leading" yaml:"leading"`
	Elements []string `json:"elements" yaml:"elements"`
}

// VariationPoint is a place where the variants differ
type VariationPoint struct {
	ID        string    `json:"id" yaml:"id"`
	Kind      string    `json:"kind" yaml:"kind"`
	Subject   string    `json:"subject" yaml:"subject"`
	Enclosing string    `json:"enclosing" yaml:"enclosing"`
	Variants  []Variant `json:"variants" yaml:"variants"`
}

// ResourceMatch pairs the files of the two variants
type ResourceMatch struct {
	LeftPath  string `json:"left_path" yaml:"left_path"`
	RightPath string `json:"right_path" yaml:"right_path"`
}

// DiffStatistics summarizes one build
type DiffStatistics struct {
	LeftFiles       int            `json:"left_files" yaml:"left_files"`
	RightFiles      int            `json:"right_files" yaml:"right_files"`
	Matches         int            `json:"matches" yaml:"matches"`
	MatchedPairs    int            `json:"matched_pairs" yaml:"matched_pairs"`
	Differences     int            `json:"differences" yaml:"differences"`
	Suppressed      int            `json:"suppressed" yaml:"suppressed"`
	VariationPoints int            `json:"variation_points" yaml:"variation_points"`
	ByKind          map[string]int `json:"by_kind" yaml:"by_kind"`
	BySubject       map[string]int `json:"by_subject" yaml:"by_subject"`
}

// DiffResponse represents the variability model built for a request
type DiffResponse struct {
	VariationPoints []VariationPoint  `json:"variation_points" yaml:"variation_points"`
	Elements        []SoftwareElement `json:"elements" yaml:"elements"`
	Resources       []ResourceMatch   `json:"resources" yaml:"resources"`
	Statistics      DiffStatistics    `json:"statistics" yaml:"statistics"`

	// SkippedRules lists malformed normalization rules that were ignored
	SkippedRules []string `json:"skipped_rules,omitempty" yaml:"skipped_rules,omitempty"`

	// Metadata
	LeftPath    string `json:"left_path" yaml:"left_path"`
	RightPath   string `json:"right_path" yaml:"right_path"`
	Duration    int64  `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// Element looks up an element by id
func (r *DiffResponse) Element(id string) (SoftwareElement, bool) {
	for _, e := range r.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return SoftwareElement{}, false
}

// DiffService builds variability models
type DiffService interface {
	// Diff loads both variants and builds their variability model
	Diff(ctx context.Context, req *DiffRequest) (*DiffResponse, error)
}

// FileReader collects the sources of one variant
type FileReader interface {
	// CollectSourceFiles returns the files under root selected by the patterns,
	// sorted by path. A file root is returned as is.
	CollectSourceFiles(root string, includePatterns, excludePatterns []string) ([]string, error)

	// FileExists reports whether path is an existing regular file
	FileExists(path string) (bool, error)
}

// DiffOutputFormatter formats variability models
type DiffOutputFormatter interface {
	// Write formats the response and writes it to writer
	Write(response *DiffResponse, format OutputFormat, writer io.Writer) error
}

// DiffConfigurationLoader loads diff settings from configuration files
type DiffConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*DiffRequest, error)

	// LoadDefaultConfig loads the discovered configuration, or defaults
	LoadDefaultConfig() *DiffRequest
}
