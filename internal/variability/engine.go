package variability

import (
	"errors"
	"log/slog"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/analyzer"
	"github.com/ludo-technologies/variscan/internal/parser"
	"github.com/ludo-technologies/variscan/internal/similarity"
)

// EngineOptions configures a complete variability build
type EngineOptions struct {
	Normalization similarity.NormalizationRules
	Matching      analyzer.MatcherConfig
	Differ        analyzer.DifferOptions
	Cleanup       CleanupOptions
	Build         BuildOptions
}

// DefaultEngineOptions returns the default options
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Matching: analyzer.DefaultMatcherConfig(),
		Build:    DefaultBuildOptions(),
	}
}

// Result holds everything one build produced
type Result struct {
	Model       *Model
	Matches     *analyzer.MatchModel
	Differences []*analyzer.Difference
	// Suppressed counts the differences removed by derived-copy cleanup
	Suppressed int
}

// Engine matches two trees, extracts their differences, cleans up derived
// copies and classifies what is left into variation points
type Engine struct {
	registry      *similarity.Registry
	matcher       *analyzer.Matcher
	differ        *analyzer.Differ
	postprocessor *DerivedCopyPostprocessor
	classifier    *Classifier
	logger        *slog.Logger
}

// NewEngine wires an engine. Malformed normalization rules are skipped and
// returned.
func NewEngine(options EngineOptions, logger *slog.Logger) (*Engine, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry, skipped := similarity.NewDefaultRegistry(options.Normalization, logger)
	return &Engine{
		registry:      registry,
		matcher:       analyzer.NewMatcher(registry, options.Matching, logger),
		differ:        analyzer.NewDiffer(options.Differ, logger),
		postprocessor: NewDerivedCopyPostprocessor(registry, options.Cleanup, logger),
		classifier:    NewClassifier(options.Build, logger),
		logger:        logger,
	}, skipped
}

// Registry returns the registry holding the engine's normalization rules
func (e *Engine) Registry() *similarity.Registry {
	return e.registry
}

// Run builds the variation point model for two trees allocated from the
// same arena
func (e *Engine) Run(left, right *parser.Node) (*Result, error) {
	mm, err := e.matcher.Match(left, right)
	if errors.Is(err, analyzer.ErrNilRoot) {
		return nil, domain.NewInvalidInputError("failed to match trees", err)
	}
	if err != nil {
		return nil, domain.NewMatchError("failed to match trees", err)
	}
	diffs, err := e.differ.Diff(mm)
	if err != nil {
		return nil, domain.NewAnalysisError("failed to extract differences", err)
	}
	kept := e.postprocessor.Process(mm, diffs)

	model, err := e.classifier.Build(mm, kept)
	if err != nil {
		return nil, err
	}
	return &Result{
		Model:       model,
		Matches:     mm,
		Differences: kept,
		Suppressed:  len(diffs) - len(kept),
	}, nil
}
