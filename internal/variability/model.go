package variability

import (
	"fmt"

	"github.com/ludo-technologies/variscan/internal/analyzer"
	"github.com/ludo-technologies/variscan/internal/parser"
)

// SoftwareElement binds one AST node into the variability model. Snapshot,
// when set, is an independent deep copy taken at build time.
type SoftwareElement struct {
	ID       string
	Node     *parser.Node
	Snapshot *parser.Node
}

// String returns a printable form of the element
func (e *SoftwareElement) String() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[%s]", e.ID, e.Node)
}

// Variant is one alternative realization of a variation point
type Variant struct {
	ID       string
	Leading  bool
	Elements []*SoftwareElement
}

// VariationPoint is a scoped site where the two variants differ
type VariationPoint struct {
	ID        string
	Enclosing *SoftwareElement
	Variants  []*Variant
	Kind      analyzer.DifferenceKind
	Subject   analyzer.Subject
}

// LeadingVariant returns the leading variant, or nil
func (vp *VariationPoint) LeadingVariant() *Variant {
	for _, v := range vp.Variants {
		if v.Leading {
			return v
		}
	}
	return nil
}

// ElementRegistry hands out one software element per node for a whole
// build and keeps them in creation order
type ElementRegistry struct {
	elements []*SoftwareElement
	byNode   map[parser.NodeID]*SoftwareElement
}

// NewElementRegistry creates an empty registry
func NewElementRegistry() *ElementRegistry {
	return &ElementRegistry{byNode: make(map[parser.NodeID]*SoftwareElement)}
}

// Element returns the element wrapping n, creating it on first use. A
// snapshot is taken on creation when requested.
func (r *ElementRegistry) Element(n *parser.Node, snapshot bool) *SoftwareElement {
	if n == nil {
		return nil
	}
	if e, ok := r.byNode[n.ID]; ok {
		return e
	}
	e := &SoftwareElement{
		ID:   fmt.Sprintf("se-%d", len(r.elements)+1),
		Node: n,
	}
	if snapshot && n.Arena() != nil {
		e.Snapshot = n.Arena().Copy(n)
	}
	r.elements = append(r.elements, e)
	r.byNode[n.ID] = e
	return e
}

// Lookup returns the element wrapping the node with the given id
func (r *ElementRegistry) Lookup(id parser.NodeID) (*SoftwareElement, bool) {
	e, ok := r.byNode[id]
	return e, ok
}

// Elements returns all elements in creation order
func (r *ElementRegistry) Elements() []*SoftwareElement {
	return r.elements
}

// Len returns the number of elements
func (r *ElementRegistry) Len() int {
	return len(r.elements)
}

// Model is the variation point model of one build
type Model struct {
	VariationPoints []*VariationPoint
	Registry        *ElementRegistry
}

// VariationPointsFor returns the variation points that scope or carry the
// node with the given id
func (m *Model) VariationPointsFor(id parser.NodeID) []*VariationPoint {
	e, ok := m.Registry.Lookup(id)
	if !ok {
		return nil
	}
	var result []*VariationPoint
	for _, vp := range m.VariationPoints {
		if vp.Enclosing == e || vp.carries(e) {
			result = append(result, vp)
		}
	}
	return result
}

func (vp *VariationPoint) carries(e *SoftwareElement) bool {
	for _, v := range vp.Variants {
		for _, el := range v.Elements {
			if el == e {
				return true
			}
		}
	}
	return false
}

// Summary counts variation points per difference kind
func (m *Model) Summary() map[analyzer.DifferenceKind]int {
	counts := make(map[analyzer.DifferenceKind]int)
	for _, vp := range m.VariationPoints {
		counts[vp.Kind]++
	}
	return counts
}
