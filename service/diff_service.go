package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/analyzer"
	"github.com/ludo-technologies/variscan/internal/parser"
	"github.com/ludo-technologies/variscan/internal/similarity"
	"github.com/ludo-technologies/variscan/internal/variability"
	"github.com/ludo-technologies/variscan/internal/version"
)

const (
	leftVariantName  = "left"
	rightVariantName = "right"
)

// DiffService implements the domain.DiffService interface
type DiffService struct {
	fileReader *FileReaderImpl
	progress   domain.ProgressManager
	logger     *slog.Logger
}

// NewDiffService creates a new diff service.
// progress can be nil - the service can work without progress reporting
func NewDiffService(progress domain.ProgressManager, logger *slog.Logger) *DiffService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiffService{
		fileReader: NewFileReader(),
		progress:   progress,
		logger:     logger,
	}
}

// Diff loads both variants into one arena and builds their variability model
func (s *DiffService) Diff(ctx context.Context, req *domain.DiffRequest) (*domain.DiffResponse, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if req == nil {
		return nil, domain.NewInvalidInputError("diff request cannot be nil", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	loader := NewSourceLoader(s.fileReader, req.MaxWorkers, s.logger)
	left, err := loader.Collect(leftVariantName, req.LeftPath, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	right, err := loader.Collect(rightVariantName, req.RightPath, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	total := len(left.Files) + len(right.Files)
	if s.progress != nil {
		var processed atomic.Int64
		s.progress.Initialize(total)
		s.progress.Start()
		loader.OnProgress(func() {
			s.progress.Update(int(processed.Add(1)), total)
		})
	}

	arena := parser.NewArena()
	leftRoot, err := loader.Load(ctx, arena, left)
	if err == nil {
		var rightRoot *parser.Node
		rightRoot, err = loader.Load(ctx, arena, right)
		if err == nil {
			s.completeProgress(true)
			return s.build(req, left, right, leftRoot, rightRoot, startTime)
		}
	}
	s.completeProgress(false)
	return nil, err
}

func (s *DiffService) completeProgress(success bool) {
	if s.progress != nil {
		s.progress.Complete(success)
	}
}

func (s *DiffService) build(req *domain.DiffRequest, left, right *VariantSource, leftRoot, rightRoot *parser.Node, startTime time.Time) (*domain.DiffResponse, error) {
	engine, skipped := variability.NewEngine(EngineOptionsFromRequest(req), s.logger)

	result, err := engine.Run(leftRoot, rightRoot)
	if err != nil {
		return nil, err
	}

	response := ConvertResult(result)
	for _, e := range skipped {
		response.SkippedRules = append(response.SkippedRules, e.Error())
	}
	response.Statistics.LeftFiles = len(left.Files)
	response.Statistics.RightFiles = len(right.Files)
	response.LeftPath = req.LeftPath
	response.RightPath = req.RightPath
	response.Duration = time.Since(startTime).Milliseconds()
	response.GeneratedAt = time.Now().Format(time.RFC3339)
	response.Version = version.Version

	s.logger.Info("variability model built",
		"variation_points", response.Statistics.VariationPoints,
		"differences", response.Statistics.Differences,
		"suppressed", response.Statistics.Suppressed,
		"duration_ms", response.Duration)
	return response, nil
}

// EngineOptionsFromRequest maps a request onto engine options
func EngineOptionsFromRequest(req *domain.DiffRequest) variability.EngineOptions {
	options := variability.DefaultEngineOptions()

	for _, r := range req.PackageNormalization {
		options.Normalization.Packages = append(options.Normalization.Packages, similarity.PackageRule{
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		})
	}
	options.Normalization.Classifiers = append([]string{}, req.ClassifierNormalization...)

	options.Matching = analyzer.MatcherConfig{
		StructuralThreshold: req.StructuralThreshold,
		ParallelThreshold:   req.ParallelThreshold,
		MaxWorkers:          req.MaxWorkers,
		CostModel:           req.CostModel,
	}
	options.Differ.EmitMoves = req.EmitMoves
	options.Cleanup = variability.CleanupOptions{
		Enabled:      req.CleanupDerivedCopies,
		CleanImports: req.CleanupDerivedCopiesCleanImports,
	}
	options.Build = variability.BuildOptions{
		LeadingVariantID:     req.LeadingVariantID,
		IntegrationVariantID: req.IntegrationVariantID,
		SnapshotFragments:    req.SnapshotFragments,
	}
	return options
}

// ConvertResult converts an engine result into its serializable form
func ConvertResult(result *variability.Result) *domain.DiffResponse {
	model := result.Model
	response := &domain.DiffResponse{
		VariationPoints: make([]domain.VariationPoint, 0, len(model.VariationPoints)),
		Elements:        make([]domain.SoftwareElement, 0, model.Registry.Len()),
		Resources:       []domain.ResourceMatch{},
		Statistics: domain.DiffStatistics{
			Matches:         result.Matches.Len(),
			MatchedPairs:    result.Matches.Pairs(),
			Differences:     len(result.Differences),
			Suppressed:      result.Suppressed,
			VariationPoints: len(model.VariationPoints),
			ByKind:          make(map[string]int),
			BySubject:       make(map[string]int),
		},
	}

	for _, vp := range model.VariationPoints {
		dto := domain.VariationPoint{
			ID:      vp.ID,
			Kind:    string(vp.Kind),
			Subject: string(vp.Subject),
		}
		if vp.Enclosing != nil {
			dto.Enclosing = vp.Enclosing.ID
		}
		for _, v := range vp.Variants {
			ids := make([]string, 0, len(v.Elements))
			for _, e := range v.Elements {
				ids = append(ids, e.ID)
			}
			dto.Variants = append(dto.Variants, domain.Variant{ID: v.ID, Leading: v.Leading, Elements: ids})
		}
		response.VariationPoints = append(response.VariationPoints, dto)
		response.Statistics.ByKind[dto.Kind]++
		response.Statistics.BySubject[dto.Subject]++
	}

	for _, e := range model.Registry.Elements() {
		response.Elements = append(response.Elements, convertElement(e))
	}

	for _, r := range result.Matches.Resources() {
		response.Resources = append(response.Resources, domain.ResourceMatch{LeftPath: r.LeftPath, RightPath: r.RightPath})
	}
	return response
}

func convertElement(e *variability.SoftwareElement) domain.SoftwareElement {
	n := e.Node
	dto := domain.SoftwareElement{
		ID:       e.ID,
		Type:     string(n.Type),
		Name:     n.Name,
		Snapshot: e.Snapshot != nil,
	}
	if qn := n.QualifiedName(); qn != n.Name {
		dto.QualifiedName = qn
	}
	if n.Location.File != "" || n.Location.StartLine > 0 {
		dto.Location = n.Location.String()
	}
	return dto
}
