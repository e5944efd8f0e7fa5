package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/variscan/internal/parser"
)

func diffSources(t *testing.T, left, right string, options DifferOptions, patterns ...string) []*Difference {
	t.Helper()
	arena := parser.NewArena()
	l := parseJava(t, arena, "A.java", left)
	r := parseJava(t, arena, "A.java", right)

	mm, err := newTestMatcher(t, patterns...).Match(l, r)
	require.NoError(t, err)
	diffs, err := NewDiffer(options, nil).Diff(mm)
	require.NoError(t, err)
	return diffs
}

func TestDiffer_AddedField(t *testing.T) {
	diffs := diffSources(t,
		"package p; public class A { private int x; }",
		"package p; public class A { private int x; public int y; }",
		DifferOptions{})

	require.Len(t, diffs, 1)
	d := diffs[0]
	assert.Equal(t, DifferenceAdd, d.Kind)
	assert.Equal(t, SubjectField, d.Subject)
	assert.Equal(t, "y", d.Node.Name)
	assert.Nil(t, d.Left())
	assert.Same(t, d.Node, d.Right())
}

func TestDiffer_DeletedMethodHidesItsBody(t *testing.T) {
	diffs := diffSources(t,
		"class A { void a() {} void b() { int x = 1; if (x > 0) { x++; } } }",
		"class A { void a() {} }",
		DifferOptions{})

	require.Len(t, diffs, 1)
	assert.Equal(t, DifferenceDelete, diffs[0].Kind)
	assert.Equal(t, SubjectMethod, diffs[0].Subject)
	assert.Equal(t, "b", diffs[0].Node.Name)
	assert.Same(t, diffs[0].Node, diffs[0].Left())
}

func TestDiffer_ReplacedStatement(t *testing.T) {
	diffs := diffSources(t,
		"class A { int run() { int total = 0; return total; } }",
		"class A { int run() { int total = 1; return total; } }",
		DifferOptions{})

	require.Len(t, diffs, 1)
	d := diffs[0]
	assert.Equal(t, DifferenceChange, d.Kind)
	assert.Equal(t, SubjectStatement, d.Subject)
	require.True(t, d.Match.IsPair())
	assert.Equal(t, parser.NodeLocalVariable, d.Left().Type)
	assert.Equal(t, "0", d.Left().FirstChild(parser.RoleInit).Value)
	assert.Equal(t, "1", d.Right().FirstChild(parser.RoleInit).Value)
	assert.Same(t, d.Right(), d.Node)
}

func TestDiffer_ChangedHeaderKeepsNestedStatements(t *testing.T) {
	diffs := diffSources(t,
		"class A { void run(int x) { if (x > 0) { x++; } } }",
		"class A { void run(int x) { if (x > 1) { x++; } } }",
		DifferOptions{})

	require.Len(t, diffs, 1)
	assert.Equal(t, DifferenceChange, diffs[0].Kind)
	assert.Equal(t, parser.NodeIf, diffs[0].Node.Type)
}

func TestDiffer_Identical(t *testing.T) {
	src := `package p;
import java.util.List;
public class A {
    private List<String> items;
    public int size() { return items.size(); }
}`
	assert.Empty(t, diffSources(t, src, src, DifferOptions{}))
}

func TestDiffer_DerivedCopyNames(t *testing.T) {
	left := "package p; public class Foo { int x; public Foo() { x = 1; } }"
	right := "package p; public class FooCustom { int x; public FooCustom() { x = 1; } }"

	arena := parser.NewArena()
	l := parseJava(t, arena, "Foo.java", left)
	r := parseJava(t, arena, "FooCustom.java", right)
	mm, err := newTestMatcher(t, "*Custom").Match(l, r)
	require.NoError(t, err)

	diffs, err := NewDiffer(DifferOptions{}, nil).Diff(mm)
	require.NoError(t, err)

	var subjects []Subject
	for _, d := range diffs {
		assert.Equal(t, DifferenceChange, d.Kind)
		subjects = append(subjects, d.Subject)
	}
	assert.Equal(t, []Subject{SubjectCompilationUnit, SubjectClassifier, SubjectMethod}, subjects)
}

func TestDiffer_Moves(t *testing.T) {
	left := "class A { void run() { a(); b(); c(); } }"
	right := "class A { void run() { b(); c(); a(); } }"

	assert.Empty(t, diffSources(t, left, right, DifferOptions{}))

	diffs := diffSources(t, left, right, DifferOptions{EmitMoves: true})
	require.Len(t, diffs, 1)
	assert.Equal(t, DifferenceMove, diffs[0].Kind)
	assert.Equal(t, SubjectStatement, diffs[0].Subject)
	assert.Equal(t, "a", diffs[0].Node.FirstChild(parser.RoleValue).Name)
}

func TestDiffer_Errors(t *testing.T) {
	d := NewDiffer(DifferOptions{}, nil)

	_, err := d.Diff(nil)
	assert.ErrorIs(t, err, ErrNilMatchModel)

	_, err = d.Diff(NewMatchModel())
	assert.ErrorIs(t, err, ErrNilMatchModel)

	mm := NewMatchModel()
	mm.Add(parser.NewArena().New(parser.NodeCompilationUnit), nil)
	_, err = d.Diff(mm)
	assert.Error(t, err)
}

func TestSubjectOf(t *testing.T) {
	arena := parser.NewArena()
	tests := []struct {
		nodeType parser.NodeType
		subject  Subject
		ok       bool
	}{
		{parser.NodeCompilationUnit, SubjectCompilationUnit, true},
		{parser.NodePackage, SubjectPackage, true},
		{parser.NodeImport, SubjectImport, true},
		{parser.NodeInterface, SubjectClassifier, true},
		{parser.NodeConstructor, SubjectMethod, true},
		{parser.NodeField, SubjectField, true},
		{parser.NodeEnumConstant, SubjectEnumConstant, true},
		{parser.NodeReturn, SubjectStatement, true},
		{parser.NodeIdentifier, "", false},
		{parser.NodeModel, "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.nodeType), func(t *testing.T) {
			subject, ok := SubjectOf(arena.New(tt.nodeType))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.subject, subject)
		})
	}

	_, ok := SubjectOf(nil)
	assert.False(t, ok)
}

func TestLongestIncreasing(t *testing.T) {
	assert.Equal(t, []bool{true, true, true}, longestIncreasing([]int{0, 1, 2}))
	assert.Equal(t, []bool{false, true, true}, longestIncreasing([]int{2, 0, 1}))
	assert.Equal(t, []bool{true, false}, longestIncreasing([]int{1, 0}))
}
