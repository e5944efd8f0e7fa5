package variability

import (
	"log/slog"

	"github.com/ludo-technologies/variscan/internal/analyzer"
	"github.com/ludo-technologies/variscan/internal/parser"
	"github.com/ludo-technologies/variscan/internal/similarity"
)

// CleanupOptions configures derived-copy cleanup
type CleanupOptions struct {
	// Enabled turns the pass on
	Enabled bool
	// CleanImports suppresses import differences inside derived copies.
	// Unset means true whenever cleanup is enabled.
	CleanImports *bool
}

// ShouldCleanImports resolves the tri-state import option
func (o CleanupOptions) ShouldCleanImports() bool {
	if !o.Enabled {
		return false
	}
	if o.CleanImports != nil {
		return *o.CleanImports
	}
	return true
}

// DerivedCopyPostprocessor removes differences that only exist because the
// right variant is a renamed copy of the left one, such as Foo and
// FooCustom under a "*Custom" normalization rule.
type DerivedCopyPostprocessor struct {
	registry *similarity.Registry
	options  CleanupOptions
	logger   *slog.Logger
}

// NewDerivedCopyPostprocessor creates the postprocessor. The registry
// supplies the normalization rules and the normalizing similarity checker.
func NewDerivedCopyPostprocessor(registry *similarity.Registry, options CleanupOptions, logger *slog.Logger) *DerivedCopyPostprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DerivedCopyPostprocessor{registry: registry, options: options, logger: logger}
}

// Process returns the differences that survive cleanup, in their original
// order. The input slice is not modified.
func (p *DerivedCopyPostprocessor) Process(mm *analyzer.MatchModel, diffs []*analyzer.Difference) []*analyzer.Difference {
	if !p.options.Enabled || mm == nil {
		return diffs
	}

	copies := p.derivedCopies(mm)
	if len(copies) == 0 {
		return diffs
	}
	units := p.derivedUnits(mm, copies)
	cleanImports := p.options.ShouldCleanImports()

	kept := make([]*analyzer.Difference, 0, len(diffs))
	for _, d := range diffs {
		if reason := p.suppression(mm, d, copies, units, cleanImports); reason != "" {
			p.logger.Debug("suppressed derived copy difference",
				slog.String("difference", d.String()),
				slog.String("reason", reason))
			continue
		}
		kept = append(kept, d)
	}

	if suppressed := len(diffs) - len(kept); suppressed > 0 {
		p.logger.Info("cleaned up derived copies",
			slog.Int("derived_copies", len(copies)),
			slog.Int("suppressed", suppressed))
	}
	return kept
}

// IsDerivedCopy reports whether a matched pair carries different names that
// normalize to the same one
func (p *DerivedCopyPostprocessor) IsDerivedCopy(m *analyzer.Match) bool {
	if !m.IsPair() || m.Left.Type != m.Right.Type {
		return false
	}
	l, r := m.Left, m.Right
	switch {
	case l.IsClassifier():
		return l.Name != r.Name && p.registry.NormalizeClassifier(l.Name) == p.registry.NormalizeClassifier(r.Name)
	case l.Type == parser.NodeCompilationUnit:
		lq, rq := l.QualifiedName(), r.QualifiedName()
		return lq != rq && p.registry.NormalizeQualified(lq) == p.registry.NormalizeQualified(rq)
	case l.Type == parser.NodePackage:
		return l.Name != r.Name && p.registry.NormalizePackage(l.Name) == p.registry.NormalizePackage(r.Name)
	}
	return false
}

func (p *DerivedCopyPostprocessor) derivedCopies(mm *analyzer.MatchModel) map[*analyzer.Match]bool {
	copies := make(map[*analyzer.Match]bool)
	for _, m := range mm.Matches() {
		if p.IsDerivedCopy(m) {
			copies[m] = true
		}
	}
	return copies
}

// derivedUnits returns the compilation unit matches that are, or contain, a
// derived copy
func (p *DerivedCopyPostprocessor) derivedUnits(mm *analyzer.MatchModel, copies map[*analyzer.Match]bool) map[*analyzer.Match]bool {
	units := make(map[*analyzer.Match]bool)
	for m := range copies {
		if um := unitMatch(mm, m.Left); um != nil {
			units[um] = true
		}
	}
	return units
}

func unitMatch(mm *analyzer.MatchModel, n *parser.Node) *analyzer.Match {
	if n == nil {
		return nil
	}
	unit := n
	if unit.Type != parser.NodeCompilationUnit {
		unit = n.EnclosingOfType(parser.NodeCompilationUnit)
	}
	if unit == nil {
		return nil
	}
	um := mm.ForNode(unit)
	if !um.IsPair() {
		return nil
	}
	return um
}

func (p *DerivedCopyPostprocessor) suppression(mm *analyzer.MatchModel, d *analyzer.Difference, copies, units map[*analyzer.Match]bool, cleanImports bool) string {
	if d.Kind == analyzer.DifferenceChange && copies[d.Match] && d.Match.IsPair() &&
		parser.LocalFingerprintIgnoringName(d.Match.Left) == parser.LocalFingerprintIgnoringName(d.Match.Right) {
		return "name only"
	}

	node := d.Match.Prefer(false)
	if node == nil {
		node = d.Node
	}
	unit := unitMatch(mm, node)
	if unit == nil || !units[unit] {
		return ""
	}

	if d.Subject == analyzer.SubjectImport && cleanImports {
		return "import"
	}
	if d.Kind == analyzer.DifferenceChange && d.Match.IsPair() {
		verdict, err := p.registry.Similar(d.Match.Left, d.Match.Right, similarity.RuleSetAST)
		if err != nil {
			p.logger.Warn("similarity check failed", slog.String("difference", d.String()), slog.Any("error", err))
			return ""
		}
		if verdict.IsSimilar() {
			return "similar after normalization"
		}
	}
	return ""
}
