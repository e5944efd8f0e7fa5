package similarity

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/variscan/internal/parser"
)

const checkerSource = `package com.acme;

import java.util.List;

public class Inventory extends Base {
    private List<String> items;
    private int limit = 10;

    public Inventory(int limit) {
        this.limit = limit;
    }

    public int count(String prefix) {
        int total = 0;
        for (String item : items) {
            if (item.startsWith(prefix)) {
                total++;
            }
        }
        try {
            check(total);
        } catch (IllegalStateException e) {
            return -1;
        }
        return total;
    }
}
`

func parseJava(t *testing.T, arena *parser.Arena, path, source string) *parser.Node {
	t.Helper()
	p := parser.New()
	defer p.Close()
	unit, err := p.ParseUnit(context.Background(), arena, path, []byte(source))
	require.NoError(t, err)
	return unit
}

func loadDoc(t *testing.T, arena *parser.Arena, doc string) *parser.Node {
	t.Helper()
	n, err := parser.NewDocumentLoader(arena).Load(strings.NewReader(doc))
	require.NoError(t, err)
	return n
}

func TestNullSymmetry(t *testing.T) {
	arena := parser.NewArena()
	unit := parseJava(t, arena, "Inventory.java", checkerSource)
	checker := NewChecker(RuleSetAST, nil)

	assert.Equal(t, Similar, checker.IsSimilar(nil, nil))
	unit.Walk(func(n *parser.Node) bool {
		assert.Equal(t, Dissimilar, checker.IsSimilar(n, nil), "node %s", n)
		assert.Equal(t, Dissimilar, checker.IsSimilar(nil, n), "node %s", n)
		return true
	})
}

func TestTypeMismatchIsDefinite(t *testing.T) {
	arena := parser.NewArena()
	unit := parseJava(t, arena, "Inventory.java", checkerSource)
	checker := NewChecker(RuleSetAST, nil)

	var nodes []*parser.Node
	unit.Walk(func(n *parser.Node) bool {
		nodes = append(nodes, n)
		return true
	})
	for _, a := range nodes {
		for _, b := range nodes {
			if a.Type != b.Type {
				require.Equal(t, Dissimilar, checker.IsSimilar(a, b), "%s vs %s", a, b)
			}
		}
	}
}

func TestReflexivityOnDeepCopy(t *testing.T) {
	arena := parser.NewArena()
	unit := parseJava(t, arena, "Inventory.java", checkerSource)
	copied := arena.Copy(unit)

	for _, ruleSet := range []RuleSet{RuleSetAST, RuleSetOutline} {
		checker := NewChecker(ruleSet, nil)
		var walk func(a, b *parser.Node)
		walk = func(a, b *parser.Node) {
			v := checker.IsSimilar(a, b)
			assert.NotEqual(t, Dissimilar, v, "%s: %s at %s", ruleSet, a, a.Location)
			if ruleSet == RuleSetAST {
				assert.Equal(t, Similar, v, "%s at %s", a, a.Location)
			}
			require.Len(t, b.Children, len(a.Children))
			for i := range a.Children {
				walk(a.Children[i], b.Children[i])
			}
		}
		walk(unit, copied)
	}
}

func TestOutlineRuleSetLeavesCodeUndecided(t *testing.T) {
	arena := parser.NewArena()
	unit := parseJava(t, arena, "Inventory.java", checkerSource)
	copied := arena.Copy(unit)
	checker := NewChecker(RuleSetOutline, nil)

	ret := unit.FindByType(parser.NodeReturn)[0]
	retCopy := copied.FindByType(parser.NodeReturn)[0]
	assert.Equal(t, Undecided, checker.IsSimilar(ret, retCopy))
	assert.False(t, Undecided.IsSimilar())

	cls := unit.FindByType(parser.NodeClass)[0]
	clsCopy := copied.FindByType(parser.NodeClass)[0]
	assert.Equal(t, Similar, checker.IsSimilar(cls, clsCopy))
}

func TestUndecidedWithoutRule(t *testing.T) {
	arena := parser.NewArena()
	a, b := arena.New(parser.NodeIf), arena.New(parser.NodeIf)
	checker := NewCheckerWithSwitch(NewSwitch(nil, importRules))
	assert.Equal(t, Undecided, checker.IsSimilar(a, b))
	assert.Equal(t, "undecided", Undecided.String())
}

func TestStatementDifferences(t *testing.T) {
	arena := parser.NewArena()
	left := parseJava(t, arena, "A.java", `class A { int m(int x) { x = x + 1; return x; } }`)
	right := parseJava(t, arena, "A.java", `class A { int m(int x) { x = x + 2; return x; } }`)
	checker := NewChecker(RuleSetAST, nil)

	lm, rm := left.FindByType(parser.NodeMethod)[0], right.FindByType(parser.NodeMethod)[0]
	assert.Equal(t, Similar, checker.IsSimilar(lm, rm), "bodies are matched separately")

	ls, rs := left.FindByType(parser.NodeExpressionStatement)[0], right.FindByType(parser.NodeExpressionStatement)[0]
	assert.Equal(t, Dissimilar, checker.IsSimilar(ls, rs))

	lr, rr := left.FindByType(parser.NodeReturn)[0], right.FindByType(parser.NodeReturn)[0]
	assert.Equal(t, Similar, checker.IsSimilar(lr, rr))
}

func TestPositionSensitiveKinds(t *testing.T) {
	arena := parser.NewArena()
	left := parseJava(t, arena, "A.java", `class A { void m() { while (true) { break; } } }`)
	right := parseJava(t, arena, "A.java", `class A { void m() { while (true) { run(); break; } } }`)
	checker := NewChecker(RuleSetAST, nil)

	lb, rb := left.FindByType(parser.NodeBreak)[0], right.FindByType(parser.NodeBreak)[0]
	assert.Equal(t, Dissimilar, checker.IsSimilar(lb, rb))

	lw, rw := left.FindByType(parser.NodeWhile)[0], right.FindByType(parser.NodeWhile)[0]
	assert.Equal(t, Similar, checker.IsSimilar(lw, rw), "while is not position sensitive")
}

func TestAreSimilarIsPairwise(t *testing.T) {
	arena := parser.NewArena()
	a := arena.NewNamed(parser.NodeField, "a")
	b := arena.NewNamed(parser.NodeField, "b")
	a2 := arena.NewNamed(parser.NodeField, "a")
	b2 := arena.NewNamed(parser.NodeField, "b")
	checker := NewChecker(RuleSetAST, nil)

	assert.Equal(t, Similar, checker.AreSimilar([]*parser.Node{a, b}, []*parser.Node{a2, b2}))
	assert.Equal(t, Dissimilar, checker.AreSimilar([]*parser.Node{a, b}, []*parser.Node{b2, a2}))
	assert.Equal(t, Dissimilar, checker.AreSimilar([]*parser.Node{a}, []*parser.Node{a2, b2}))
	assert.Equal(t, Similar, checker.AreSimilar(nil, nil))
}

func TestNormalizedClassifiers(t *testing.T) {
	arena := parser.NewArena()
	left := parseJava(t, arena, "Foo.java", `package com.acme; public class Foo { Foo() {} Foo next; }`)
	right := parseJava(t, arena, "FooCustom.java", `package com.acme; public class FooCustom { FooCustom() {} FooCustom next; }`)

	registry, _ := NewDefaultRegistry(NormalizationRules{Classifiers: []string{"*Custom"}}, nil)
	plain := NewChecker(RuleSetAST, nil)
	normalizing := NewChecker(RuleSetAST, registry)

	for _, nodeType := range []parser.NodeType{parser.NodeCompilationUnit, parser.NodeClass, parser.NodeConstructor, parser.NodeField} {
		l, r := left.FindByType(nodeType), right.FindByType(nodeType)
		if nodeType == parser.NodeCompilationUnit {
			l, r = []*parser.Node{left}, []*parser.Node{right}
		}
		require.Len(t, l, 1)
		require.Len(t, r, 1)
		assert.Equal(t, Dissimilar, plain.IsSimilar(l[0], r[0]), "plain %s", nodeType)
		assert.Equal(t, Similar, normalizing.IsSimilar(l[0], r[0]), "normalizing %s", nodeType)
	}

	verdict, err := registry.Similar(left, right, RuleSetOutline)
	require.NoError(t, err)
	assert.Equal(t, Similar, verdict)
}

const baseLeft = `
type: Model
name: left
children:
  - type: CompilationUnit
    role: unit
    name: Use
    children:
      - type: Package
        role: package
        name: com.acme
      - type: Class
        role: member
        name: Use
        children:
          - type: TypeReference
            role: super
            name: Base
            refs:
              target: com.acme.Base
`

const baseRight = `
type: Model
name: right
children:
  - type: CompilationUnit
    role: unit
    name: Base
    children:
      - type: Package
        role: package
        name: com.acme
      - type: Class
        role: member
        key: base
        name: Base
      - type: Class
        role: member
        name: Use
        children:
          - type: TypeReference
            role: super
            name: Base
            refs:
              target: "@base"
`

func TestProxyResolutionAgainstOtherSide(t *testing.T) {
	arena := parser.NewArena()
	left := loadDoc(t, arena, baseLeft)
	right := loadDoc(t, arena, baseRight)
	checker := NewChecker(RuleSetAST, nil)

	lt := left.FindByType(parser.NodeTypeReference)[0]
	rt := right.FindByType(parser.NodeTypeReference)[0]
	lref, _ := lt.Ref(parser.RefTarget)
	rref, _ := rt.Ref(parser.RefTarget)
	require.True(t, lref.IsProxy())
	require.False(t, rref.IsProxy())

	assert.Equal(t, Similar, checker.IsSimilar(lt, rt))
	assert.Equal(t, Similar, checker.IsSimilar(rt, lt))
	assert.Equal(t, Similar, checker.IsSimilarRef(lref, rref, lt, rt))
	assert.Equal(t, Dissimilar, checker.IsSimilarRef(parser.Unresolved("com.acme.Other"), rref, lt, rt))

	// two proxies are resolved in their own contexts when possible
	assert.Equal(t, Similar, checker.IsSimilarRef(parser.Unresolved("com.acme.Base"), parser.Unresolved("com.acme.Base"), lt, rt))
	assert.Equal(t, Dissimilar, checker.IsSimilarRef(parser.Unresolved("a.B"), parser.Unresolved("a.C"), lt, rt))
}

func TestReflexivityOnSubtreeCopies(t *testing.T) {
	sources := map[string]string{
		"A.java":         `class A { int m(int n) { int t = 0; for (int i = 0; i < n; i++) { t++; } { t--; } return t; } }`,
		"Inventory.java": checkerSource,
	}
	checker := NewChecker(RuleSetAST, nil)
	for path, source := range sources {
		t.Run(path, func(t *testing.T) {
			arena := parser.NewArena()
			unit := parseJava(t, arena, path, source)
			unit.Walk(func(n *parser.Node) bool {
				copied := arena.Copy(n)
				assert.Equal(t, Similar, checker.IsSimilar(n, copied), "%s at position %d", n, n.Position())
				assert.Equal(t, Similar, checker.IsSimilar(copied, n), "%s at position %d", n, n.Position())
				return true
			})
		})
	}
}

func TestSubtreeCopyKeepsInnerBindings(t *testing.T) {
	arena := parser.NewArena()
	unit := parseJava(t, arena, "A.java", `class A { int m(int n) { int t = 0; for (int i = 0; i < n; i++) { t++; } return t; } }`)
	checker := NewChecker(RuleSetAST, nil)

	loop := unit.FindByType(parser.NodeFor)[0]
	copied := arena.Copy(loop)
	cond := copied.FirstChild(parser.RoleCondition)
	require.NotNil(t, cond)
	inner, _ := cond.Children[0].Ref(parser.RefTarget)
	outer, _ := cond.Children[1].Ref(parser.RefTarget)
	assert.Same(t, copied.FirstChild(parser.RoleInit), inner.Target(), "loop variable points into the copy")
	assert.Same(t, unit.FindByType(parser.NodeParameter)[0], outer.Target(), "parameter stays shared")
	assert.Equal(t, Similar, checker.IsSimilar(loop, copied))

	// a copy whose loop variable is renamed no longer corresponds
	renamed := arena.Copy(loop)
	renamed.FirstChild(parser.RoleInit).Name = "j"
	assert.Equal(t, Dissimilar, checker.IsSimilar(loop, renamed))
}

func TestBoundIdentifiersCompareDeclarations(t *testing.T) {
	arena := parser.NewArena()
	unit := parseJava(t, arena, "A.java", `
class A {
    int x;
    int local() { int x = 1; return x; }
    int field() { return x; }
}
class B {
    int local() { int x = 1; return x; }
}
`)
	checker := NewChecker(RuleSetAST, nil)
	returns := unit.FindByType(parser.NodeReturn)
	require.Len(t, returns, 3)
	localA, fieldA, localB := returns[0], returns[1], returns[2]

	assert.Equal(t, Dissimilar, checker.IsSimilar(localA, fieldA), "local x vs field x")
	assert.Equal(t, Dissimilar, checker.IsSimilar(localA, localB), "locals of different classifiers")
	assert.Equal(t, Similar, checker.IsSimilar(localA, localA))
}

func TestBoundIdentifiersAcrossVariants(t *testing.T) {
	arena := parser.NewArena()
	left := parseJava(t, arena, "A.java", `class A { int f; int m(int p) { return f + p; } }`)
	right := parseJava(t, arena, "A.java", `class A { int f; void g() {} int m(int p) { return f + p; } }`)
	other := parseJava(t, arena, "A.java", `class C { int f; int m(int p) { return f + p; } }`)
	checker := NewChecker(RuleSetAST, nil)

	lr := left.FindByType(parser.NodeReturn)[0]
	rr := right.FindByType(parser.NodeReturn)[0]
	or := other.FindByType(parser.NodeReturn)[0]
	assert.Equal(t, Similar, checker.IsSimilar(lr, rr))
	assert.Equal(t, Dissimilar, checker.IsSimilar(lr, or))
}

const identifierLeft = `
type: Model
name: left
children:
  - type: CompilationUnit
    role: unit
    name: Use
    children:
      - type: Package
        role: package
        name: com.acme
      - type: Class
        role: member
        name: Use
        children:
          - type: Field
            role: member
            name: kind
            children:
              - type: Identifier
                role: init
                name: Base
                refs:
                  target: com.acme.Base
              - type: Identifier
                role: init
                name: Base
                refs:
                  target: com.acme.Other
`

const identifierRight = `
type: Model
name: right
children:
  - type: CompilationUnit
    role: unit
    name: Use
    children:
      - type: Package
        role: package
        name: com.acme
      - type: Class
        role: member
        key: base
        name: Base
      - type: Class
        role: member
        name: Use
        children:
          - type: Field
            role: member
            name: kind
            children:
              - type: Identifier
                role: init
                name: Base
                refs:
                  target: "@base"
`

func TestBoundIdentifierAgainstProxy(t *testing.T) {
	arena := parser.NewArena()
	left := loadDoc(t, arena, identifierLeft)
	right := loadDoc(t, arena, identifierRight)
	checker := NewChecker(RuleSetAST, nil)

	idents := left.FindByType(parser.NodeIdentifier)
	require.Len(t, idents, 2)
	target := right.FindByType(parser.NodeIdentifier)[0]

	assert.Equal(t, Similar, checker.IsSimilar(idents[0], target))
	assert.Equal(t, Similar, checker.IsSimilar(target, idents[0]))
	assert.Equal(t, Dissimilar, checker.IsSimilar(idents[1], target))
}
