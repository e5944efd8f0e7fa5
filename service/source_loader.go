package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/parser"
)

// VariantSource is one side of a build before loading: the path given by the
// user and the files selected from it
type VariantSource struct {
	Name  string
	Path  string
	Files []string
}

// SourceLoader turns variant sources into Model forests allocated from a
// shared arena. Java files are parsed on a worker pool with one tree-sitter
// parser per task; YAML and JSON files are read as AST documents.
type SourceLoader struct {
	fileReader *FileReaderImpl
	maxWorkers int
	onProgress func()
	logger     *slog.Logger
}

// NewSourceLoader creates a loader. maxWorkers of zero means one worker per CPU.
func NewSourceLoader(fileReader *FileReaderImpl, maxWorkers int, logger *slog.Logger) *SourceLoader {
	if fileReader == nil {
		fileReader = NewFileReader()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceLoader{
		fileReader: fileReader,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// OnProgress registers a callback invoked once per loaded file
func (l *SourceLoader) OnProgress(fn func()) {
	l.onProgress = fn
}

// Collect selects the files of a variant
func (l *SourceLoader) Collect(name, path string, includePatterns, excludePatterns []string) (*VariantSource, error) {
	files, err := l.fileReader.CollectSourceFiles(path, includePatterns, excludePatterns)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("no source files found in %s variant: %s", name, path), nil)
	}
	return &VariantSource{Name: name, Path: path, Files: files}, nil
}

// Load builds the forest of a variant. A single AST document holding a
// Model is used as is; every other file contributes one compilation unit.
// The first file that fails to load, in path order, fails the whole variant.
func (l *SourceLoader) Load(ctx context.Context, arena *parser.Arena, src *VariantSource) (*parser.Node, error) {
	if len(src.Files) == 1 && l.fileReader.IsASTDocument(src.Files[0]) {
		root, err := parser.NewDocumentLoader(arena).LoadFile(src.Files[0])
		if err != nil {
			return nil, domain.NewParseError(src.Files[0], err)
		}
		l.progress()
		l.validate(src.Files[0], root)
		if root.Type == parser.NodeModel {
			parser.ResolveAll(root)
			l.logStatistics(src.Name, root)
			return root, nil
		}
		return l.forest(arena, src.Name, []*parser.Node{root})
	}

	units, err := l.loadUnits(ctx, arena, src.Files)
	if err != nil {
		return nil, err
	}
	return l.forest(arena, src.Name, units)
}

func (l *SourceLoader) forest(arena *parser.Arena, name string, units []*parser.Node) (*parser.Node, error) {
	root := parser.NewForest(arena, name)
	for _, unit := range units {
		if unit.Type != parser.NodeCompilationUnit {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("expected a compilation unit, got %s", unit), nil)
		}
		root.AddChild(parser.RoleUnit, unit)
	}
	if unresolved := parser.ResolveAll(root); unresolved > 0 {
		l.logger.Debug("references left unresolved", "variant", name, "count", unresolved)
	}
	l.logStatistics(name, root)
	return root, nil
}

// validate reports structural problems of an AST document. They are not
// fatal: matching treats a missing name like any other difference.
func (l *SourceLoader) validate(path string, root *parser.Node) {
	validator := parser.NewValidatorVisitor()
	root.Accept(validator)
	for _, msg := range validator.GetErrors() {
		l.logger.Warn("malformed AST document", "file", path, "problem", msg)
	}
}

func (l *SourceLoader) logStatistics(name string, root *parser.Node) {
	stats := parser.NewStatisticsVisitor()
	root.Accept(stats)
	l.logger.Debug("variant loaded",
		"variant", name,
		"units", len(root.ChildrenByRole(parser.RoleUnit)),
		"nodes", stats.TotalNodes,
		"max_depth", stats.MaxDepth)
}

func (l *SourceLoader) loadUnits(ctx context.Context, arena *parser.Arena, files []string) ([]*parser.Node, error) {
	maxWorkers := l.maxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	units := make([]*parser.Node, len(files))
	errs := make([]error, len(files))

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			defer l.progress()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			units[i], errs[i] = l.loadUnit(ctx, arena, path)
			return nil
		})
	}
	_ = p.Wait()

	for i, err := range errs {
		if err != nil {
			if ctx.Err() != nil {
				return nil, domain.NewAnalysisError("loading cancelled", ctx.Err())
			}
			return nil, domain.NewParseError(files[i], err)
		}
	}
	return units, nil
}

func (l *SourceLoader) loadUnit(ctx context.Context, arena *parser.Arena, path string) (*parser.Node, error) {
	if l.fileReader.IsASTDocument(path) {
		unit, err := parser.NewDocumentLoader(arena).LoadFile(path)
		if err == nil {
			l.validate(path, unit)
		}
		return unit, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// tree-sitter parsers are not safe for concurrent use
	p := parser.New()
	defer p.Close()
	return p.ParseUnit(ctx, arena, path, content)
}

func (l *SourceLoader) progress() {
	if l.onProgress != nil {
		l.onProgress()
	}
}
