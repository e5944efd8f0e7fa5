package similarity

import "github.com/ludo-technologies/variscan/internal/parser"

// Checker decides similarity of nodes, node lists and references. Each
// checker owns a fresh Switch and must not be shared across goroutines.
type Checker struct {
	sw *Switch
}

// NewChecker creates a checker for a rule set. A nil registry disables name
// normalization.
func NewChecker(ruleSet RuleSet, registry *Registry) *Checker {
	return &Checker{sw: NewRuleSetSwitch(ruleSet, registry)}
}

// NewCheckerWithSwitch creates a checker around a custom switch
func NewCheckerWithSwitch(sw *Switch) *Checker {
	return &Checker{sw: sw}
}

// IsSimilar compares two nodes. Both nil is Similar, one nil or differing
// types are Dissimilar; everything else is decided by the switch.
func (c *Checker) IsSimilar(a, b *parser.Node) Verdict {
	return c.sw.Compare(a, b)
}

// AreSimilar compares two lists pairwise by position. Reordered lists are
// dissimilar.
func (c *Checker) AreSimilar(l1, l2 []*parser.Node) Verdict {
	return c.sw.CompareList(l1, l2)
}

// IsSimilarRef compares two references. Proxies are resolved against the
// tree of the other side; ctx1 and ctx2 are used when the other side is a
// proxy too and therefore offers no tree to resolve in.
func (c *Checker) IsSimilarRef(r1, r2 parser.Reference, ctx1, ctx2 *parser.Node) Verdict {
	if r1.IsProxy() && r2.IsProxy() {
		t1, t2 := parser.Resolve(r1, ctx1), parser.Resolve(r2, ctx2)
		if t1 != nil && t2 != nil {
			return c.sw.SameDeclaration(t1, t2)
		}
	}
	return c.sw.CompareReference(r1, r2)
}

// Switch returns the checker's switch
func (c *Checker) Switch() *Switch {
	return c.sw
}
