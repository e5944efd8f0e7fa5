package similarity

import (
	"maps"
	"slices"

	"github.com/ludo-technologies/variscan/internal/parser"
)

// Verdict is the tri-state outcome of a comparison
type Verdict int

const (
	// Undecided means no rule applied to the subject
	Undecided Verdict = iota
	Similar
	Dissimilar
)

// String returns the verdict name
func (v Verdict) String() string {
	switch v {
	case Similar:
		return "similar"
	case Dissimilar:
		return "dissimilar"
	default:
		return "undecided"
	}
}

// IsSimilar reports whether the verdict is Similar. Undecided counts as not
// similar.
func (v Verdict) IsSimilar() bool {
	return v == Similar
}

// verdictOf converts a definite boolean outcome
func verdictOf(similar bool) Verdict {
	if similar {
		return Similar
	}
	return Dissimilar
}

// then evaluates the next comparison only while all previous ones were Similar
func (v Verdict) then(next func() Verdict) Verdict {
	if v != Similar {
		return v
	}
	return next()
}

// RuleSet selects the sub-switches composed into a Switch
type RuleSet string

const (
	// RuleSetAST compares every node kind of the general AST
	RuleSetAST RuleSet = "ast"
	// RuleSetOutline compares declarations only: containers, imports,
	// classifiers, member signatures and types
	RuleSetOutline RuleSet = "outline"
)

// Rule compares subject against target. Both are non-nil and of the same type.
type Rule func(sw *Switch, subject, target *parser.Node) Verdict

// SubSwitch is a named table of rules for one area of the AST
type SubSwitch struct {
	Name  string
	cases map[parser.NodeType]Rule
}

// NewSubSwitch creates a sub-switch from a rule table
func NewSubSwitch(name string, cases map[parser.NodeType]Rule) *SubSwitch {
	return &SubSwitch{Name: name, cases: maps.Clone(cases)}
}

// Case returns the rule for a node type
func (s *SubSwitch) Case(nodeType parser.NodeType) (Rule, bool) {
	rule, ok := s.cases[nodeType]
	return rule, ok
}

// Switch dispatches comparisons on the dynamic type of the subject to the
// first composed sub-switch that has a case for it. The comparison target is
// passed explicitly, so a Switch holds no per-comparison state; it is still
// meant to be owned by a single checker.
type Switch struct {
	subs     []*SubSwitch
	registry *Registry
}

// NewSwitch composes sub-switches in order. A nil registry disables name
// normalization.
func NewSwitch(registry *Registry, subs ...*SubSwitch) *Switch {
	return &Switch{subs: subs, registry: registry}
}

// NewRuleSetSwitch composes the sub-switches of a rule set
func NewRuleSetSwitch(ruleSet RuleSet, registry *Registry) *Switch {
	switch ruleSet {
	case RuleSetOutline:
		return NewSwitch(registry, containerRules, importRules, classifierRules, memberOutlineRules, typeRules)
	default:
		return NewSwitch(registry, containerRules, importRules, classifierRules, memberRules,
			statementRules, expressionRules, typeRules)
	}
}

// Compare compares subject with target. Nil and type guards come first, then
// the subject's rule decides. Subjects without a rule yield Undecided.
func (sw *Switch) Compare(subject, target *parser.Node) Verdict {
	if AllNull(subject, target) {
		return Similar
	}
	if OnlyOneIsNull(subject, target) {
		return Dissimilar
	}
	if subject.Type != target.Type {
		return Dissimilar
	}
	for _, sub := range sw.subs {
		if rule, ok := sub.Case(subject.Type); ok {
			return rule(sw, subject, target)
		}
	}
	return Undecided
}

// CompareList compares two lists pairwise in order. Lists of different
// length are dissimilar; the first non-similar verdict wins.
func (sw *Switch) CompareList(l1, l2 []*parser.Node) Verdict {
	if len(l1) != len(l2) {
		return Dissimilar
	}
	for i := range l1 {
		if v := sw.Compare(l1[i], l2[i]); v != Similar {
			return v
		}
	}
	return Similar
}

// CompareRole compares the children of both nodes carrying the given role
func (sw *Switch) CompareRole(a, b *parser.Node, role string) Verdict {
	return sw.CompareList(a.ChildrenByRole(role), b.ChildrenByRole(role))
}

// CompareRoles compares several roles in order
func (sw *Switch) CompareRoles(a, b *parser.Node, roles ...string) Verdict {
	for _, role := range roles {
		if v := sw.CompareRole(a, b, role); v != Similar {
			return v
		}
	}
	return Similar
}

// CompareRefs compares the reference attribute key of both nodes, resolving
// a proxy on one side against the other side.
func (sw *Switch) CompareRefs(a, b *parser.Node, key string) Verdict {
	ra, okA := a.Ref(key)
	rb, okB := b.Ref(key)
	if !okA && !okB {
		return Similar
	}
	if okA != okB {
		return Dissimilar
	}
	return sw.CompareReference(ra, rb)
}

// CompareReference compares two references. When exactly one side is a
// proxy it is resolved in the tree of the other side's target; two proxies,
// or a proxy that cannot be resolved, are compared by normalized path.
func (sw *Switch) CompareReference(r1, r2 parser.Reference) Verdict {
	if r1.IsZero() || r2.IsZero() {
		return verdictOf(r1.IsZero() && r2.IsZero())
	}
	t1, t2 := r1.Target(), r2.Target()
	switch {
	case r1.IsProxy() && !r2.IsProxy():
		t1 = parser.Resolve(r1, t2)
	case r2.IsProxy() && !r1.IsProxy():
		t2 = parser.Resolve(r2, t1)
	}
	if t1 == nil || t2 == nil {
		return verdictOf(sw.registry.NormalizeQualified(r1.Path()) == sw.registry.NormalizeQualified(r2.Path()))
	}
	return sw.SameDeclaration(t1, t2)
}

// SameDeclaration decides whether two declarations denote the same entity:
// same type, same normalized name and, for nested declarations, the same
// enclosing classifier. Declarations inside a detached subtree have no
// enclosing classifier to compare and are compared by their path from the
// subtree root instead. It only walks upwards and never revisits a pair.
func (sw *Switch) SameDeclaration(a, b *parser.Node) Verdict {
	if AllNull(a, b) {
		return Similar
	}
	if OnlyOneIsNull(a, b) || a.Type != b.Type {
		return Dissimilar
	}
	if a == b {
		return Similar
	}
	if detached(a) || detached(b) {
		return verdictOf(sw.sameDeclarationName(a, b) && sameRelativePath(a, b))
	}
	switch {
	case a.IsClassifier(), a.Type == parser.NodeCompilationUnit:
		return verdictOf(sw.registry.NormalizeQualified(a.QualifiedName()) == sw.registry.NormalizeQualified(b.QualifiedName()))
	case !sw.sameDeclarationName(a, b):
		return Dissimilar
	case a.Type == parser.NodePackage:
		return Similar
	}
	return sw.SameDeclaration(a.EnclosingClassifier(), b.EnclosingClassifier())
}

func (sw *Switch) sameDeclarationName(a, b *parser.Node) bool {
	switch {
	case a.Type == parser.NodePackage:
		return sw.registry.NormalizePackage(a.Name) == sw.registry.NormalizePackage(b.Name)
	case a.IsClassifier(), a.Type == parser.NodeConstructor:
		return sw.SameClassifierName(a.Name, b.Name)
	}
	return a.Name == b.Name
}

// detached reports whether n lives in a subtree cut out of its model, such as
// a deep copy of a single statement.
func detached(n *parser.Node) bool {
	switch n.Root().Type {
	case parser.NodeModel, parser.NodeCompilationUnit:
		return false
	}
	return true
}

// sameRelativePath walks both declarations upwards in lockstep until either
// side reaches its root, requiring the same type, role and position on the way.
func sameRelativePath(a, b *parser.Node) bool {
	for a.Parent() != nil && b.Parent() != nil {
		if a.Type != b.Type || a.Role != b.Role || a.Position() != b.Position() {
			return false
		}
		a, b = a.Parent(), b.Parent()
	}
	return a.Type == b.Type
}

// SameClassifierName compares two simple classifier names after normalization
func (sw *Switch) SameClassifierName(a, b string) bool {
	return sw.registry.NormalizeClassifier(a) == sw.registry.NormalizeClassifier(b)
}

// Registry returns the registry used for normalization
func (sw *Switch) Registry() *Registry {
	return sw.registry
}

// sameScalars compares value, operator, modifiers (as a set) and attributes
func sameScalars(a, b *parser.Node) bool {
	if a.Value != b.Value || a.Op != b.Op {
		return false
	}
	if !sameModifiers(a, b) {
		return false
	}
	return maps.Equal(a.Attrs, b.Attrs)
}

func sameModifiers(a, b *parser.Node) bool {
	if len(a.Modifiers) != len(b.Modifiers) {
		return false
	}
	ma := slices.Clone(a.Modifiers)
	mb := slices.Clone(b.Modifiers)
	slices.Sort(ma)
	slices.Sort(mb)
	return slices.Equal(ma, mb)
}

// samePosition compares sibling ordinals. A root has no siblings and matches
// any position.
func samePosition(a, b *parser.Node) bool {
	pa, pb := a.Position(), b.Position()
	return pa < 0 || pb < 0 || pa == pb
}

// ownedChildren returns the children that are not diff units themselves
func ownedChildren(n *parser.Node) []*parser.Node {
	var owned []*parser.Node
	for _, c := range n.Children {
		if !c.IsDiffUnit() {
			owned = append(owned, c)
		}
	}
	return owned
}

// structural compares name, scalars, references and owned children in order.
// Nested diff units are left to the matcher.
func structural(sw *Switch, a, b *parser.Node) Verdict {
	if a.Name != b.Name || !sameScalars(a, b) {
		return Dissimilar
	}
	ca, cb := ownedChildren(a), ownedChildren(b)
	if len(ca) != len(cb) {
		return Dissimilar
	}
	for i := range ca {
		if ca[i].Role != cb[i].Role {
			return Dissimilar
		}
	}
	return sw.CompareList(ca, cb).then(func() Verdict {
		return compareAllRefs(sw, a, b)
	})
}

func compareAllRefs(sw *Switch, a, b *parser.Node) Verdict {
	if len(a.Refs) != len(b.Refs) {
		return Dissimilar
	}
	for key := range a.Refs {
		if v := sw.CompareRefs(a, b, key); v != Similar {
			return v
		}
	}
	return Similar
}
