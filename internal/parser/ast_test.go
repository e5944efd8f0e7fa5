package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceSource = `package com.example.shop;

import java.util.List;
import java.util.ArrayList;

public class OrderService extends BaseService implements Auditable {
    private final List<String> orders = new ArrayList<>();
    public int limit;

    public OrderService(int limit) {
        this.limit = limit;
    }

    @Override
    public int count(String prefix) {
        int total = 0;
        for (String order : orders) {
            if (order.startsWith(prefix)) {
                total++;
            }
        }
        return total;
    }
}
`

func parseUnit(t *testing.T, arena *Arena, path, source string) *Node {
	t.Helper()
	p := New()
	defer p.Close()
	unit, err := p.ParseUnit(context.Background(), arena, path, []byte(source))
	require.NoError(t, err)
	return unit
}

func TestASTBuilderDeclarations(t *testing.T) {
	unit := parseUnit(t, NewArena(), "OrderService.java", serviceSource)

	pkg := unit.FirstChild(RolePackage)
	require.NotNil(t, pkg)
	assert.Equal(t, "com.example.shop", pkg.Name)

	imports := unit.ChildrenByRole(RoleImport)
	require.Len(t, imports, 2)
	assert.Equal(t, "java.util.List", imports[0].Name)
	assert.Equal(t, "java.util.ArrayList", imports[1].Name)
	ref, ok := imports[0].Ref(RefImported)
	require.True(t, ok)
	assert.True(t, ref.IsProxy())
	assert.Equal(t, "java.util.List", ref.Path())

	classes := unit.ChildrenByRole(RoleMember)
	require.Len(t, classes, 1)
	cls := classes[0]
	assert.Equal(t, NodeClass, cls.Type)
	assert.Equal(t, "OrderService", cls.Name)
	assert.True(t, cls.HasModifier("public"))
	assert.Equal(t, "com.example.shop.OrderService", cls.QualifiedName())

	supers := cls.ChildrenByRole(RoleSuper)
	require.Len(t, supers, 2)
	superRef, _ := supers[0].Ref(RefTarget)
	assert.Equal(t, "com.example.shop.BaseService", superRef.Path())

	members := cls.ChildrenByRole(RoleMember)
	require.Len(t, members, 4)
	assert.Equal(t, NodeField, members[0].Type)
	assert.Equal(t, "orders", members[0].Name)
	assert.True(t, members[0].HasModifier("final"))
	assert.NotNil(t, members[0].FirstChild(RoleInit))
	fieldType := members[0].FirstChild(RoleType)
	require.NotNil(t, fieldType)
	typeRef, _ := fieldType.Ref(RefTarget)
	assert.Equal(t, "java.util.List", typeRef.Path())

	assert.Equal(t, NodeConstructor, members[2].Type)
	assert.Equal(t, NodeMethod, members[3].Type)
	assert.Equal(t, "count", members[3].Name)
	assert.True(t, members[3].HasModifier("@Override"))
	require.Len(t, members[3].ChildrenByRole(RoleParam), 1)
}

func TestASTBuilderStatements(t *testing.T) {
	unit := parseUnit(t, NewArena(), "OrderService.java", serviceSource)
	count := unit.FindByType(NodeMethod)[0]

	body := count.FirstChild(RoleBody)
	require.NotNil(t, body)
	assert.Equal(t, NodeBlock, body.Type)

	stmts := body.ChildrenByRole(RoleBody)
	require.Len(t, stmts, 3)
	assert.Equal(t, NodeLocalVariable, stmts[0].Type)
	assert.Equal(t, "total", stmts[0].Name)
	assert.Equal(t, NodeForEach, stmts[1].Type)
	assert.Equal(t, NodeReturn, stmts[2].Type)

	loopBody := stmts[1].FirstChild(RoleBody)
	require.NotNil(t, loopBody)
	ifs := loopBody.FindByType(NodeIf)
	require.Len(t, ifs, 1)
	assert.NotNil(t, ifs[0].FirstChild(RoleCondition))
	assert.Equal(t, NodeMethodCall, ifs[0].FirstChild(RoleCondition).Type)
}

func TestASTBuilderBindsIdentifiers(t *testing.T) {
	unit := parseUnit(t, NewArena(), "OrderService.java", serviceSource)
	count := unit.FindByType(NodeMethod)[0]

	idents := count.Find(func(n *Node) bool {
		return n.Type == NodeIdentifier && n.Name == "total"
	})
	require.NotEmpty(t, idents)
	for _, ident := range idents {
		ref, ok := ident.Ref(RefTarget)
		require.True(t, ok, "identifier %s should be bound", ident)
		assert.Equal(t, NodeLocalVariable, ref.Target().Type)
	}

	prefix := count.Find(func(n *Node) bool {
		return n.Type == NodeIdentifier && n.Name == "prefix"
	})
	require.Len(t, prefix, 1)
	ref, ok := prefix[0].Ref(RefTarget)
	require.True(t, ok)
	assert.Equal(t, NodeParameter, ref.Target().Type)

	orders := count.Find(func(n *Node) bool {
		return n.Type == NodeIdentifier && n.Name == "orders"
	})
	require.Len(t, orders, 1)
	ref, ok = orders[0].Ref(RefTarget)
	require.True(t, ok)
	assert.Equal(t, NodeField, ref.Target().Type)
}

func TestNodeStructure(t *testing.T) {
	arena := NewArena()
	block := arena.New(NodeBlock)
	first := arena.New(NodeReturn)
	second := arena.New(NodeBreak)
	param := arena.New(NodeParameter)
	method := arena.NewNamed(NodeMethod, "run")

	block.AddChild(RoleBody, first)
	block.AddChild(RoleBody, second)
	method.AddChild(RoleParam, param)
	method.AddChild(RoleBody, block)

	assert.Equal(t, method, block.Parent())
	assert.Equal(t, 0, block.Position())
	assert.Equal(t, 1, second.Position())
	assert.Equal(t, 0, param.Position())
	assert.Equal(t, -1, method.Position())
	assert.Equal(t, method, second.Root())
	assert.Equal(t, 5, method.Size())

	// re-parenting removes the node from its previous container
	other := arena.New(NodeBlock)
	other.AddChild(RoleBody, second)
	assert.Len(t, block.Children, 1)
	assert.Equal(t, other, second.Parent())
}

func TestNodeKinds(t *testing.T) {
	arena := NewArena()
	tests := []struct {
		nodeType   NodeType
		classifier bool
		member     bool
		statement  bool
		expression bool
		diffUnit   bool
	}{
		{NodeClass, true, false, false, false, true},
		{NodeMethod, false, true, false, false, true},
		{NodeField, false, true, false, false, true},
		{NodeIf, false, false, true, false, true},
		{NodeBlock, false, false, true, false, true},
		{NodeIdentifier, false, false, false, true, false},
		{NodeParameter, false, false, false, false, false},
		{NodeImport, false, false, false, false, true},
		{NodeTypeReference, false, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.nodeType), func(t *testing.T) {
			n := arena.New(tt.nodeType)
			assert.Equal(t, tt.classifier, n.IsClassifier())
			assert.Equal(t, tt.member, n.IsMember())
			assert.Equal(t, tt.statement, n.IsStatement())
			assert.Equal(t, tt.expression, n.IsExpression())
			assert.Equal(t, tt.diffUnit, n.IsDiffUnit())
		})
	}
}

func TestEnclosingNonExpression(t *testing.T) {
	arena := NewArena()
	stmt := arena.New(NodeExpressionStatement)
	call := arena.NewNamed(NodeMethodCall, "run")
	arg := arena.NewNamed(NodeIdentifier, "x")
	call.AddChild(RoleArgument, arg)
	stmt.AddChild(RoleValue, call)

	assert.Equal(t, stmt, arg.EnclosingNonExpression())
	assert.Equal(t, stmt, stmt.EnclosingNonExpression())
}

func TestArenaCopy(t *testing.T) {
	arena := NewArena()
	unit := parseUnit(t, arena, "OrderService.java", serviceSource)
	cls := unit.ChildrenByRole(RoleMember)[0]

	cp := arena.Copy(cls)
	require.NotNil(t, cp)
	assert.Nil(t, cp.Parent())
	assert.NotEqual(t, cls.ID, cp.ID)
	assert.Equal(t, cls.Size(), cp.Size())
	assert.Equal(t, Fingerprint(cls), Fingerprint(cp))
	assert.Same(t, cp, arena.Get(cp.ID))

	// bindings inside the copied subtree point at the copies
	ident := cp.Find(func(n *Node) bool {
		return n.Type == NodeIdentifier && n.Name == "total"
	})[0]
	ref, _ := ident.Ref(RefTarget)
	assert.Equal(t, cp, ref.Target().Root())
}

func TestFingerprints(t *testing.T) {
	arena := NewArena()
	left := parseUnit(t, arena, "A.java", "class A { int f; void m() { return; } }")
	right := parseUnit(t, arena, "A.java", "class A { int f; void m() { int x = 1; return; } }")

	leftCls := left.ChildrenByRole(RoleMember)[0]
	rightCls := right.ChildrenByRole(RoleMember)[0]

	// the class owns no changed content, its method does
	assert.Equal(t, LocalFingerprint(leftCls), LocalFingerprint(rightCls))
	assert.NotEqual(t, Fingerprint(leftCls), Fingerprint(rightCls))

	leftField := leftCls.ChildrenByRole(RoleMember)[0]
	rightField := rightCls.ChildrenByRole(RoleMember)[0]
	assert.Equal(t, LocalFingerprint(leftField), LocalFingerprint(rightField))
}

func TestLocalFingerprintIgnoringName(t *testing.T) {
	arena := NewArena()
	left := parseUnit(t, arena, "Foo.java", "class Foo { int f; }")
	right := parseUnit(t, arena, "FooCustom.java", "class FooCustom { int f; }")
	other := parseUnit(t, arena, "Bar.java", "public class Bar { int f; }")

	leftCls := left.ChildrenByRole(RoleMember)[0]
	rightCls := right.ChildrenByRole(RoleMember)[0]
	otherCls := other.ChildrenByRole(RoleMember)[0]

	assert.NotEqual(t, LocalFingerprint(leftCls), LocalFingerprint(rightCls))
	assert.Equal(t, LocalFingerprintIgnoringName(leftCls), LocalFingerprintIgnoringName(rightCls))
	// modifiers still count
	assert.NotEqual(t, LocalFingerprintIgnoringName(leftCls), LocalFingerprintIgnoringName(otherCls))
}
