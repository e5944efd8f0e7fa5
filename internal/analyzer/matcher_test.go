package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/variscan/internal/constants"
	"github.com/ludo-technologies/variscan/internal/parser"
	"github.com/ludo-technologies/variscan/internal/similarity"
)

func newTestMatcher(t *testing.T, classifierPatterns ...string) *Matcher {
	t.Helper()
	registry, skipped := similarity.NewDefaultRegistry(similarity.NormalizationRules{Classifiers: classifierPatterns}, nil)
	require.Empty(t, skipped)
	return NewMatcher(registry, DefaultMatcherConfig(), nil)
}

const orderLeft = `package shop;

import java.util.List;

public class Order {
    private List<String> items;

    public int count(String prefix) {
        int total = 0;
        for (String item : items) {
            if (item.startsWith(prefix)) {
                total++;
            }
        }
        return total;
    }

    public void clear() {
        items.clear();
    }
}
`

const orderRight = `package shop;

import java.util.List;

public class Order {
    private List<String> items;
    public int limit;

    public int count(String prefix) {
        int total = 1;
        for (String item : items) {
            if (item.startsWith(prefix)) {
                total++;
            }
        }
        return total;
    }

    private void clear() {
        items.clear();
    }
}
`

func TestMatcher_Match(t *testing.T) {
	arena := parser.NewArena()
	left := parseJava(t, arena, "Order.java", orderLeft)
	right := parseJava(t, arena, "Order.java", orderRight)

	mm, err := newTestMatcher(t).Match(left, right)
	require.NoError(t, err)

	assert.Same(t, right, mm.Counterpart(left))
	assert.Equal(t, []ResourceMatch{{LeftPath: "Order.java", RightPath: "Order.java"}}, mm.Resources())

	t.Run("identical declarations pair by similarity", func(t *testing.T) {
		leftItems := findNamed(left, parser.NodeField, "items")
		rightItems := findNamed(right, parser.NodeField, "items")
		assert.Same(t, rightItems, mm.Counterpart(leftItems))

		leftCls := findNamed(left, parser.NodeClass, "Order")
		rightCls := findNamed(right, parser.NodeClass, "Order")
		assert.Same(t, rightCls, mm.Counterpart(leftCls))
	})

	t.Run("added member is right only", func(t *testing.T) {
		limit := findNamed(right, parser.NodeField, "limit")
		m := mm.ForNode(limit)
		require.NotNil(t, m)
		assert.Nil(t, m.Left)
	})

	t.Run("changed modifiers pair by identity", func(t *testing.T) {
		leftClear := findNamed(left, parser.NodeMethod, "clear")
		rightClear := findNamed(right, parser.NodeMethod, "clear")
		assert.Same(t, rightClear, mm.Counterpart(leftClear))
	})

	t.Run("replaced statement pairs by structure", func(t *testing.T) {
		leftTotal := findNamed(left, parser.NodeLocalVariable, "total")
		rightTotal := findNamed(right, parser.NodeLocalVariable, "total")
		assert.Same(t, rightTotal, mm.Counterpart(leftTotal))
	})

	t.Run("nested statements pair below their parents", func(t *testing.T) {
		leftIf := left.FindByType(parser.NodeIf)
		rightIf := right.FindByType(parser.NodeIf)
		require.Len(t, leftIf, 1)
		require.Len(t, rightIf, 1)
		assert.Same(t, rightIf[0], mm.Counterpart(leftIf[0]))
	})
}

func TestMatcher_OneSidedSubtreesAreIndexed(t *testing.T) {
	arena := parser.NewArena()
	left := parseJava(t, arena, "A.java", "class A { void run() { int x = 1; } }")
	right := parseJava(t, arena, "A.java", "class A { }")

	mm, err := newTestMatcher(t).Match(left, right)
	require.NoError(t, err)

	for _, n := range []*parser.Node{
		findNamed(left, parser.NodeMethod, "run"),
		findNamed(left, parser.NodeLocalVariable, "x"),
	} {
		m := mm.ForNode(n)
		require.NotNil(t, m, "%s", n)
		assert.Same(t, n, m.Left)
		assert.Nil(t, m.Right)
	}
}

func TestMatcher_DerivedCopy(t *testing.T) {
	left := "package p; public class Foo { public Foo() {} }"
	right := "package p; public class FooCustom { public FooCustom() {} }"

	t.Run("normalized names pair", func(t *testing.T) {
		arena := parser.NewArena()
		l := forest(t, arena, "left", map[string]string{"Foo.java": left}, "Foo.java")
		r := forest(t, arena, "right", map[string]string{"FooCustom.java": right}, "FooCustom.java")

		mm, err := newTestMatcher(t, "*Custom").Match(l, r)
		require.NoError(t, err)

		assert.Same(t, findNamed(r, parser.NodeCompilationUnit, "FooCustom"),
			mm.Counterpart(findNamed(l, parser.NodeCompilationUnit, "Foo")))
		assert.Same(t, findNamed(r, parser.NodeClass, "FooCustom"),
			mm.Counterpart(findNamed(l, parser.NodeClass, "Foo")))
		assert.Same(t, findNamed(r, parser.NodeConstructor, "FooCustom"),
			mm.Counterpart(findNamed(l, parser.NodeConstructor, "Foo")))
	})

	t.Run("without normalization units stay apart", func(t *testing.T) {
		arena := parser.NewArena()
		l := forest(t, arena, "left", map[string]string{"Foo.java": left}, "Foo.java")
		r := forest(t, arena, "right", map[string]string{"FooCustom.java": right}, "FooCustom.java")

		mm, err := newTestMatcher(t).Match(l, r)
		require.NoError(t, err)

		assert.Nil(t, mm.Counterpart(findNamed(l, parser.NodeCompilationUnit, "Foo")))
		assert.Empty(t, mm.Resources())
	})
}

func TestMatcher_StructuralThreshold(t *testing.T) {
	left := `class A { void run() { call(1, 2, 3); } }`
	right := `class A { void run() { other(4, 5, 6, 7); } }`

	arena := parser.NewArena()
	l := parseJava(t, arena, "A.java", left)
	r := parseJava(t, arena, "A.java", right)

	mm, err := newTestMatcher(t).Match(l, r)
	require.NoError(t, err)

	ls := l.FindByType(parser.NodeExpressionStatement)
	rs := r.FindByType(parser.NodeExpressionStatement)
	require.Len(t, ls, 1)
	require.Len(t, rs, 1)
	assert.Nil(t, mm.Counterpart(ls[0]))
	assert.Nil(t, mm.Counterpart(rs[0]))
}

func TestNewMatcher_CostModel(t *testing.T) {
	registry, _ := similarity.NewDefaultRegistry(similarity.NormalizationRules{}, nil)

	tests := []struct {
		name     string
		model    string
		expected CostModel
	}{
		{name: "default", model: "", expected: &DefaultCostModel{}},
		{name: "uniform", model: constants.CostModelUniform, expected: &DefaultCostModel{}},
		{name: "java", model: constants.CostModelJava, expected: &JavaCostModel{}},
		{name: "unknown falls back", model: "weighted", expected: &DefaultCostModel{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(registry, MatcherConfig{CostModel: tt.model}, nil)
			assert.IsType(t, tt.expected, m.apted.costModel)
		})
	}
}

func TestMatcher_ParallelEqualsSequential(t *testing.T) {
	sources := map[string]string{}
	var leftOrder, rightOrder []string
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		path := name + ".java"
		sources[path] = "package p; class " + name + " { int " + name + "; }"
		leftOrder = append(leftOrder, path)
	}
	rightOrder = []string{"H.java", "C.java", "A.java", "G.java", "B.java", "F.java"}

	run := func(cfg MatcherConfig) (*parser.Node, *parser.Node, *MatchModel) {
		arena := parser.NewArena()
		l := forest(t, arena, "left", sources, leftOrder...)
		r := forest(t, arena, "right", sources, rightOrder...)
		registry, _ := similarity.NewDefaultRegistry(similarity.NormalizationRules{}, nil)
		mm, err := NewMatcher(registry, cfg, nil).Match(l, r)
		require.NoError(t, err)
		return l, r, mm
	}

	pairs := func(l *parser.Node, mm *MatchModel) map[string]string {
		result := make(map[string]string)
		for _, unit := range l.Children {
			if other := mm.Counterpart(unit); other != nil {
				result[unit.Name] = other.Name
			}
		}
		return result
	}

	sl, _, seq := run(MatcherConfig{StructuralThreshold: 0.5})
	pl, _, par := run(MatcherConfig{StructuralThreshold: 0.5, ParallelThreshold: 2, MaxWorkers: 3})

	assert.Equal(t, pairs(sl, seq), pairs(pl, par))
	assert.Len(t, pairs(sl, seq), 6)
	assert.Equal(t, seq.Len(), par.Len())
	assert.Equal(t, seq.Resources(), par.Resources())
}

func TestMatcher_Errors(t *testing.T) {
	m := newTestMatcher(t)
	arena := parser.NewArena()
	unit := arena.NewNamed(parser.NodeCompilationUnit, "A")

	_, err := m.Match(nil, unit)
	assert.ErrorIs(t, err, ErrNilRoot)
	_, err = m.Match(unit, nil)
	assert.ErrorIs(t, err, ErrNilRoot)

	_, err = m.Match(unit, arena.NewNamed(parser.NodeModel, "A"))
	assert.Error(t, err)

	_, err = m.Match(unit, parser.NewArena().NewNamed(parser.NodeCompilationUnit, "A"))
	assert.Error(t, err)
}

func TestIdentityKey(t *testing.T) {
	arena := parser.NewArena()
	unit := parseJava(t, arena, "Shop.java", `package shop;
import static java.lang.Math.max;
public class ShopCustom {
    int total;
    public ShopCustom(int a, String[] b) {}
    void put(String key, int value) {}
}`)
	m := newTestMatcher(t, "*Custom")

	assert.Equal(t, "CompilationUnit|shop.Shop", m.identityKey(unit))
	assert.Equal(t, "Package|shop", m.identityKey(unit.FirstChild(parser.RolePackage)))
	assert.Equal(t, "Import|java.lang.Math.max|true", m.identityKey(unit.FirstChild(parser.RoleImport)))
	assert.Equal(t, "Class|Shop", m.identityKey(findNamed(unit, parser.NodeClass, "ShopCustom")))
	assert.Equal(t, "Field|total", m.identityKey(findNamed(unit, parser.NodeField, "total")))
	assert.Equal(t, "Method|put(String,int)", m.identityKey(findNamed(unit, parser.NodeMethod, "put")))
	assert.Equal(t, "Constructor|(int,String[])", m.identityKey(findNamed(unit, parser.NodeConstructor, "ShopCustom")))
	assert.Equal(t, "", m.identityKey(unit.FindByType(parser.NodeBlock)[0]))
}
