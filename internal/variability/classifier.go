package variability

import (
	"fmt"
	"log/slog"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/analyzer"
	"github.com/ludo-technologies/variscan/internal/constants"
	"github.com/ludo-technologies/variscan/internal/parser"
)

// BuildOptions configures variation point construction
type BuildOptions struct {
	// LeadingVariantID tags leading variants
	LeadingVariantID string
	// IntegrationVariantID tags non-leading variants
	IntegrationVariantID string
	// SnapshotFragments stores a deep copy of every element's node
	SnapshotFragments bool
}

// DefaultBuildOptions returns the default variant identifiers
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		LeadingVariantID:     constants.DefaultLeadingVariantID,
		IntegrationVariantID: constants.DefaultIntegrationVariantID,
	}
}

// Classifier turns differences into variation points
type Classifier struct {
	options BuildOptions
	logger  *slog.Logger
}

// NewClassifier creates a classifier. Empty variant ids fall back to the
// defaults.
func NewClassifier(options BuildOptions, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if options.LeadingVariantID == "" {
		options.LeadingVariantID = constants.DefaultLeadingVariantID
	}
	if options.IntegrationVariantID == "" {
		options.IntegrationVariantID = constants.DefaultIntegrationVariantID
	}
	return &Classifier{options: options, logger: logger}
}

// Build creates one variation point per classifiable difference. Differences
// that cannot be scoped, or whose kind has no classification, are logged and
// skipped. A missing match model fails the whole build.
func (c *Classifier) Build(mm *analyzer.MatchModel, diffs []*analyzer.Difference) (*Model, error) {
	if mm == nil {
		return nil, domain.NewInvalidInputError("cannot build variation points without a match model", analyzer.ErrNilMatchModel)
	}

	b := &build{
		classifier: c,
		matches:    mm,
		model:      &Model{Registry: NewElementRegistry()},
	}
	for _, d := range diffs {
		if d == nil {
			continue
		}
		b.classify(d)
	}

	c.logger.Debug("built variation points",
		slog.Int("differences", len(diffs)),
		slog.Int("variation_points", len(b.model.VariationPoints)),
		slog.Int("elements", b.model.Registry.Len()))
	return b.model, nil
}

type build struct {
	classifier *Classifier
	matches    *analyzer.MatchModel
	model      *Model
}

func (b *build) classify(d *analyzer.Difference) {
	logger := b.classifier.logger
	opts := b.classifier.options

	switch d.Kind {
	case analyzer.DifferenceAdd:
		node := d.Node
		if node == nil {
			node = d.Right()
		}
		enclosing, err := b.enclosing(node, false)
		if err != nil {
			logger.Warn("skipping difference", slog.String("difference", d.String()), slog.Any("error", err))
			return
		}
		b.add(d, enclosing, b.variant(opts.IntegrationVariantID, false, node))

	case analyzer.DifferenceDelete:
		node := d.Node
		if node == nil {
			node = d.Left()
		}
		enclosing, err := b.enclosing(node, true)
		if err != nil {
			logger.Warn("skipping difference", slog.String("difference", d.String()), slog.Any("error", err))
			return
		}
		b.add(d, enclosing, b.variant(opts.LeadingVariantID, true, node))

	case analyzer.DifferenceChange:
		m := d.Match
		if !m.IsPair() {
			m = b.matches.ForNode(d.Node)
		}
		if !m.IsPair() {
			logger.Warn("skipping difference", slog.String("difference", d.String()),
				slog.String("error", "change does not resolve to both sides"))
			return
		}
		enclosing, err := b.enclosing(m.Right, false)
		if err != nil {
			logger.Warn("skipping difference", slog.String("difference", d.String()), slog.Any("error", err))
			return
		}
		b.add(d, enclosing,
			b.variant(opts.IntegrationVariantID, false, m.Left),
			b.variant(opts.LeadingVariantID, true, m.Right))

	default:
		logger.Error("unhandled difference kind", slog.String("kind", string(d.Kind)), slog.String("difference", d.String()))
	}
}

func (b *build) add(d *analyzer.Difference, enclosing *parser.Node, variants ...*Variant) {
	vp := &VariationPoint{
		ID:        fmt.Sprintf("%s%d", constants.DefaultVariationPointPrefix, len(b.model.VariationPoints)+1),
		Enclosing: b.element(enclosing),
		Variants:  variants,
		Kind:      d.Kind,
		Subject:   d.Subject,
	}
	b.model.VariationPoints = append(b.model.VariationPoints, vp)
}

func (b *build) variant(id string, leading bool, n *parser.Node) *Variant {
	return &Variant{
		ID:       id,
		Leading:  leading,
		Elements: []*SoftwareElement{b.element(n)},
	}
}

func (b *build) element(n *parser.Node) *SoftwareElement {
	return b.model.Registry.Element(n, b.classifier.options.SnapshotFragments)
}

// enclosing resolves the scope of n: its structural container, or the
// method for a body block, mapped through the container's match onto the
// preferred side.
func (b *build) enclosing(n *parser.Node, preferLeft bool) (*parser.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("difference has no node")
	}
	container := ScopeContainer(n)
	if container == nil {
		return nil, fmt.Errorf("%s has no structural container", n)
	}
	m := b.matches.ForNode(container)
	if m == nil {
		return nil, fmt.Errorf("container %s of %s is not matched", container, n)
	}
	scope := m.Prefer(preferLeft)
	if !IsValidScope(scope) {
		return nil, fmt.Errorf("container %s of %s is not a valid scope", scope, n)
	}
	return scope, nil
}

// ScopeContainer returns the structural container of n. A block placed
// directly in a method-like container is skipped in favour of the container.
func ScopeContainer(n *parser.Node) *parser.Node {
	parent := n.Parent()
	if parent != nil && parent.Type == parser.NodeBlock {
		if owner := parent.Parent(); owner != nil && owner.IsMethodLike() {
			return owner
		}
	}
	return parent
}

// IsValidScope reports whether a node may enclose a variation point
func IsValidScope(n *parser.Node) bool {
	return n != nil && !n.IsExpression() && !n.IsType()
}
