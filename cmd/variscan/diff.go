package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/variscan/app"
	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/config"
	"github.com/ludo-technologies/variscan/internal/constants"
	"github.com/ludo-technologies/variscan/service"
)

// DiffCommand builds the variability model of two variants
type DiffCommand struct {
	configFile string
	outputPath string
	format     string

	includePatterns      []string
	excludePatterns      []string
	packageNormalization []string
	classifierPatterns   []string

	cleanupDerivedCopies bool
	cleanImports         bool
	leadingVariantID     string
	integrationVariantID string

	structuralThreshold float64
	parallelThreshold   int
	maxWorkers          int
	costModel           string
	emitMoves           bool
	snapshot            bool
	noProgress          bool
}

// NewDiffCommand creates a new diff command with default flag values
func NewDiffCommand() *DiffCommand {
	return &DiffCommand{
		format:               constants.DefaultOutputFormat,
		includePatterns:      []string{constants.DefaultIncludePattern},
		leadingVariantID:     constants.DefaultLeadingVariantID,
		integrationVariantID: constants.DefaultIntegrationVariantID,
		structuralThreshold:  constants.DefaultStructuralThreshold,
		parallelThreshold:    constants.DefaultParallelThreshold,
		maxWorkers:           constants.DefaultMaxWorkers,
		costModel:            constants.DefaultCostModel,
	}
}

// CreateCobraCommand creates the cobra command for model building
func (c *DiffCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <base> <derived>",
		Short: "Build the variability model of a base and a derived variant",
		Long: `Compare a base variant with a derived variant and consolidate their
differences into variation points.

Each side is a source directory, a single Java file or an AST document
(.yaml, .yml, .json). Settings are read from .variscan.toml, discovered from
the working directory upwards; flags override them.

Examples:
  # Compare two checkouts
  variscan diff product-base/ product-customer/

  # Treat FooCustom as a renamed copy of Foo and drop the copy noise
  variscan diff --classifier-normalization '*Custom' --cleanup-derived-copies base/ derived/

  # Map the derived package onto the base one
  variscan diff --package-normalization 'com.customer=com.acme' base/ derived/

  # Write the model as JSON
  variscan diff --format json -o model.json base/ derived/`,
		Args: cobra.ExactArgs(2),
		RunE: c.runDiff,
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.configFile, "config", "c", "", "Path to configuration file")
	flags.StringVarP(&c.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	flags.StringVarP(&c.format, "format", "f", c.format, "Output format: text, json, yaml")

	flags.StringSliceVar(&c.includePatterns, "include", c.includePatterns, "File patterns to include")
	flags.StringSliceVar(&c.excludePatterns, "exclude", nil, "File patterns to exclude")

	flags.StringSliceVar(&c.packageNormalization, "package-normalization", nil,
		"Package rewrite rules as pattern=replacement, tried in order")
	flags.StringSliceVar(&c.classifierPatterns, "classifier-normalization", nil,
		"Classifier name patterns with one '*', e.g. '*Custom'")
	flags.BoolVar(&c.cleanupDerivedCopies, "cleanup-derived-copies", false,
		"Suppress differences caused by derived copies of base classifiers")
	flags.BoolVar(&c.cleanImports, "clean-imports", false,
		"Also suppress import differences of derived copies (default: follows --cleanup-derived-copies)")

	flags.StringVar(&c.leadingVariantID, "leading-variant", c.leadingVariantID, "Id of the variants taken from the derived side")
	flags.StringVar(&c.integrationVariantID, "integration-variant", c.integrationVariantID, "Id of the variants taken from the base side")

	flags.Float64Var(&c.structuralThreshold, "structural-threshold", c.structuralThreshold,
		"Minimum tree similarity for statements to correspond (0.0-1.0]")
	flags.IntVar(&c.parallelThreshold, "parallel-threshold", c.parallelThreshold,
		"List length from which correspondences are computed in parallel, 0 disables")
	flags.IntVar(&c.maxWorkers, "max-workers", c.maxWorkers, "Maximum worker goroutines, 0 means one per CPU")
	flags.StringVar(&c.costModel, "cost-model", c.costModel,
		"Tree edit costs for statement correspondence: uniform or java")
	flags.BoolVar(&c.emitMoves, "emit-moves", false, "Report reordered statements as MOVE differences")
	flags.BoolVar(&c.snapshot, "snapshot", false, "Attach source snapshots to model elements")
	flags.BoolVar(&c.noProgress, "no-progress", false, "Disable the progress bar")

	// Tuning knobs belong in .variscan.toml
	_ = flags.MarkHidden("parallel-threshold")
	_ = flags.MarkHidden("max-workers")

	return cmd
}

func (c *DiffCommand) runDiff(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	request, err := c.createDiffRequest(cmd, args, logger)
	if err != nil {
		return c.reportError(cmd.ErrOrStderr(), err)
	}

	useCase, err := c.createDiffUseCase(cmd, logger)
	if err != nil {
		return c.reportError(cmd.ErrOrStderr(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := useCase.Execute(ctx, *request); err != nil {
		return c.reportError(cmd.ErrOrStderr(), err)
	}
	return nil
}

// createDiffRequest merges the configuration file with explicitly set flags
func (c *DiffCommand) createDiffRequest(cmd *cobra.Command, args []string, logger *slog.Logger) (*domain.DiffRequest, error) {
	loader := service.NewConfigurationLoader(logger)

	var base *domain.DiffRequest
	if c.configFile != "" {
		loaded, err := loader.LoadConfig(c.configFile)
		if err != nil {
			return nil, err
		}
		base = loaded
	} else {
		base = loader.LoadDefaultConfig()
	}

	override, err := c.flagRequest(args, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	flags := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	return loader.MergeConfig(base, override, flags), nil
}

// flagRequest builds a request from the flag values alone
func (c *DiffCommand) flagRequest(args []string, stdout io.Writer) (*domain.DiffRequest, error) {
	rules, err := parsePackageRules(c.packageNormalization)
	if err != nil {
		return nil, err
	}

	req := &domain.DiffRequest{
		LeftPath:                args[0],
		RightPath:               args[1],
		IncludePatterns:         c.includePatterns,
		ExcludePatterns:         c.excludePatterns,
		PackageNormalization:    rules,
		ClassifierNormalization: c.classifierPatterns,
		CleanupDerivedCopies:    c.cleanupDerivedCopies,
		LeadingVariantID:        c.leadingVariantID,
		IntegrationVariantID:    c.integrationVariantID,
		StructuralThreshold:     c.structuralThreshold,
		ParallelThreshold:       c.parallelThreshold,
		MaxWorkers:              c.maxWorkers,
		CostModel:               c.costModel,
		EmitMoves:               c.emitMoves,
		OutputFormat:            domain.OutputFormat(strings.ToLower(c.format)),
		OutputPath:              c.outputPath,
		SnapshotFragments:       c.snapshot,
		ConfigPath:              c.configFile,
	}
	if c.outputPath == "" {
		req.OutputWriter = stdout
	}
	req.CleanupDerivedCopiesCleanImports = config.BoolPtr(c.cleanImports)
	return req, nil
}

// parsePackageRules parses pattern=replacement pairs
func parsePackageRules(values []string) ([]domain.NormalizationRule, error) {
	rules := make([]domain.NormalizationRule, 0, len(values))
	for _, v := range values {
		pattern, replacement, ok := strings.Cut(v, "=")
		if !ok || pattern == "" {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid package normalization %q, expected pattern=replacement", v), nil)
		}
		rules = append(rules, domain.NormalizationRule{Pattern: pattern, Replacement: replacement})
	}
	return rules, nil
}

func (c *DiffCommand) createDiffUseCase(cmd *cobra.Command, logger *slog.Logger) (*app.DiffUseCase, error) {
	var progress domain.ProgressManager
	if !c.noProgress && service.IsInteractiveEnvironment() {
		progress = service.NewProgressManager()
		progress.SetWriter(cmd.ErrOrStderr())
	}

	return app.NewDiffUseCaseBuilder().
		WithService(service.NewDiffService(progress, logger)).
		WithFormatter(service.NewDiffFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
}

// reportError prints the categorized error with recovery suggestions
func (c *DiffCommand) reportError(w io.Writer, err error) error {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error: %s\n", categorized.Error())
	if suggestions := categorizer.GetRecoverySuggestions(categorized.Category); len(suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range suggestions {
			fmt.Fprintf(w, "  • %s\n", s)
		}
	}
	return err
}

// NewDiffCmd creates and returns the diff cobra command
func NewDiffCmd() *cobra.Command {
	return NewDiffCommand().CreateCobraCommand()
}
