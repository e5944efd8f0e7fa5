package parser

import (
	"fmt"
	"slices"
	"strings"
)

// NodeType represents the concrete type of an AST node
type NodeType string

// Java-like AST node types
const (
	// Containers
	NodeModel           NodeType = "Model"
	NodeCompilationUnit NodeType = "CompilationUnit"
	NodePackage         NodeType = "Package"
	NodeImport          NodeType = "Import"

	// Classifiers
	NodeClass      NodeType = "Class"
	NodeInterface  NodeType = "Interface"
	NodeEnum       NodeType = "Enum"
	NodeAnnotation NodeType = "Annotation"

	// Members
	NodeMethod       NodeType = "Method"
	NodeConstructor  NodeType = "Constructor"
	NodeField        NodeType = "Field"
	NodeEnumConstant NodeType = "EnumConstant"
	NodeParameter    NodeType = "Parameter"

	// Statements
	NodeBlock               NodeType = "Block"
	NodeLocalVariable       NodeType = "LocalVariable"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeReturn              NodeType = "Return"
	NodeIf                  NodeType = "If"
	NodeFor                 NodeType = "For"
	NodeForEach             NodeType = "ForEach"
	NodeWhile               NodeType = "While"
	NodeDoWhile             NodeType = "DoWhile"
	NodeSwitch              NodeType = "Switch"
	NodeSwitchCase          NodeType = "SwitchCase"
	NodeTry                 NodeType = "Try"
	NodeCatch               NodeType = "Catch"
	NodeThrow               NodeType = "Throw"
	NodeBreak               NodeType = "Break"
	NodeContinue            NodeType = "Continue"
	NodeSynchronized        NodeType = "Synchronized"
	NodeAssert              NodeType = "Assert"
	NodeEmpty               NodeType = "Empty"
	NodeLabeled             NodeType = "Labeled"

	// Expressions
	NodeIdentifier  NodeType = "Identifier"
	NodeMethodCall  NodeType = "MethodCall"
	NodeLiteral     NodeType = "Literal"
	NodeAssignment  NodeType = "Assignment"
	NodeBinary      NodeType = "Binary"
	NodeUnary       NodeType = "Unary"
	NodeNew         NodeType = "New"
	NodeCast        NodeType = "Cast"
	NodeConditional NodeType = "Conditional"
	NodeFieldAccess NodeType = "FieldAccess"
	NodeArrayAccess NodeType = "ArrayAccess"
	NodeLambda      NodeType = "Lambda"
	NodeThis        NodeType = "This"

	// Types
	NodeTypeReference NodeType = "TypeReference"
	NodePrimitiveType NodeType = "PrimitiveType"
)

// Child roles used by the builders
const (
	RoleBody      = "body"
	RoleMember    = "member"
	RoleParam     = "param"
	RoleType      = "type"
	RoleCondition = "condition"
	RoleThen      = "then"
	RoleElse      = "else"
	RoleInit      = "init"
	RoleUpdate    = "update"
	RoleArgument  = "argument"
	RoleTarget    = "target"
	RoleValue     = "value"
	RoleOperand   = "operand"
	RoleCatch     = "catch"
	RoleFinally   = "finally"
	RoleCase      = "case"
	RoleSuper     = "super"
	RoleImport    = "import"
	RolePackage   = "package"
	RoleUnit      = "unit"
)

// Reference attribute keys
const (
	RefTarget   = "target"
	RefImported = "imported"
)

// NodeID is the stable identity of a node inside an Arena
type NodeID int

// Location represents the position of a node in the source code
type Location struct {
	File      string `json:"file,omitempty" yaml:"file,omitempty"`
	StartLine int    `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	StartCol  int    `json:"start_col,omitempty" yaml:"start_col,omitempty"`
	EndLine   int    `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	EndCol    int    `json:"end_col,omitempty" yaml:"end_col,omitempty"`
}

// String returns a compact file:line representation
func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.StartLine, l.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Node represents an AST node. Children are owned; the parent pointer is
// derived from containment and only set by AddChild.
type Node struct {
	ID       NodeID
	Type     NodeType
	Role     string // role inside the parent (body, param, type, ...)
	Name     string
	Value    string // literal text
	Op       string // operator for unary/binary/assignment expressions
	Location Location

	Modifiers []string
	Attrs     map[string]string
	Refs      map[string]Reference
	Children  []*Node

	parent *Node
	arena  *Arena
}

// Parent returns the structural container of the node
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// AddChild appends an owned child under the given role
func (n *Node) AddChild(role string, child *Node) {
	if child == nil {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.Role = role
	child.parent = n
	n.Children = append(n.Children, child)
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// SetAttr sets a free-form scalar attribute
func (n *Node) SetAttr(key, value string) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
}

// Attr returns a scalar attribute, or nil when it is not set
func (n *Node) Attr(key string) *string {
	if n == nil || n.Attrs == nil {
		return nil
	}
	v, ok := n.Attrs[key]
	if !ok {
		return nil
	}
	return &v
}

// SetRef sets a reference attribute
func (n *Node) SetRef(key string, ref Reference) {
	if n.Refs == nil {
		n.Refs = make(map[string]Reference)
	}
	n.Refs[key] = ref
}

// Ref returns a reference attribute and whether it is set
func (n *Node) Ref(key string) (Reference, bool) {
	if n == nil || n.Refs == nil {
		return Reference{}, false
	}
	r, ok := n.Refs[key]
	return r, ok
}

// HasModifier reports whether the modifier is present
func (n *Node) HasModifier(mod string) bool {
	return slices.Contains(n.Modifiers, mod)
}

// ChildrenByRole returns the children with the given role in order
func (n *Node) ChildrenByRole(role string) []*Node {
	var result []*Node
	for _, c := range n.Children {
		if c.Role == role {
			result = append(result, c)
		}
	}
	return result
}

// FirstChild returns the first child with the given role
func (n *Node) FirstChild(role string) *Node {
	for _, c := range n.Children {
		if c.Role == role {
			return c
		}
	}
	return nil
}

// Position returns the ordinal of the node among siblings sharing its role,
// or -1 for a root node.
func (n *Node) Position() int {
	if n == nil || n.parent == nil {
		return -1
	}
	pos := 0
	for _, c := range n.parent.Children {
		if c == n {
			return pos
		}
		if c.Role == n.Role {
			pos++
		}
	}
	return -1
}

// Root returns the top-most container of the node
func (n *Node) Root() *Node {
	current := n
	for current != nil && current.parent != nil {
		current = current.parent
	}
	return current
}

// IsClassifier returns true for class-like declarations
func (n *Node) IsClassifier() bool {
	switch n.Type {
	case NodeClass, NodeInterface, NodeEnum, NodeAnnotation:
		return true
	default:
		return false
	}
}

// IsMember returns true for classifier members
func (n *Node) IsMember() bool {
	switch n.Type {
	case NodeMethod, NodeConstructor, NodeField, NodeEnumConstant:
		return true
	default:
		return false
	}
}

// IsMethodLike returns true for containers whose body block is transparent
func (n *Node) IsMethodLike() bool {
	switch n.Type {
	case NodeMethod, NodeConstructor, NodeLambda:
		return true
	default:
		return false
	}
}

// IsStatement returns true if the node is a statement
func (n *Node) IsStatement() bool {
	switch n.Type {
	case NodeBlock, NodeLocalVariable, NodeExpressionStatement, NodeReturn,
		NodeIf, NodeFor, NodeForEach, NodeWhile, NodeDoWhile, NodeSwitch,
		NodeSwitchCase, NodeTry, NodeCatch, NodeThrow, NodeBreak, NodeContinue,
		NodeSynchronized, NodeAssert, NodeEmpty, NodeLabeled:
		return true
	default:
		return false
	}
}

// IsExpression returns true if the node is an expression
func (n *Node) IsExpression() bool {
	switch n.Type {
	case NodeIdentifier, NodeMethodCall, NodeLiteral, NodeAssignment,
		NodeBinary, NodeUnary, NodeNew, NodeCast, NodeConditional,
		NodeFieldAccess, NodeArrayAccess, NodeLambda, NodeThis:
		return true
	default:
		return false
	}
}

// IsType returns true for type references
func (n *Node) IsType() bool {
	return n.Type == NodeTypeReference || n.Type == NodePrimitiveType
}

// IsDiffUnit reports whether differences are reported at this node.
// Everything else rolls up into the nearest enclosing unit.
func (n *Node) IsDiffUnit() bool {
	if n == nil {
		return false
	}
	switch n.Type {
	case NodeCompilationUnit, NodePackage, NodeImport:
		return true
	}
	return n.IsClassifier() || n.IsMember() || n.IsStatement()
}

// QualifiedName returns the dotted name of classifiers, packages and
// compilation units. Other nodes return their plain name.
func (n *Node) QualifiedName() string {
	if n == nil {
		return ""
	}
	switch {
	case n.Type == NodePackage:
		return n.Name
	case n.IsClassifier():
		prefix := ""
		if outer := n.EnclosingClassifier(); outer != nil {
			prefix = outer.QualifiedName()
		} else if pkg := n.Namespace(); pkg != "" {
			prefix = pkg
		}
		if prefix == "" {
			return n.Name
		}
		return prefix + "." + n.Name
	case n.Type == NodeCompilationUnit:
		if pkg := n.Namespace(); pkg != "" {
			return pkg + "." + n.Name
		}
		return n.Name
	}
	return n.Name
}

// Namespace returns the package name declared by the enclosing compilation unit
func (n *Node) Namespace() string {
	unit := n
	if unit.Type != NodeCompilationUnit {
		unit = n.EnclosingOfType(NodeCompilationUnit)
	}
	if unit == nil {
		return ""
	}
	if pkg := unit.FirstChild(RolePackage); pkg != nil {
		return pkg.Name
	}
	return ""
}

// EnclosingClassifier returns the nearest classifier ancestor
func (n *Node) EnclosingClassifier() *Node {
	for current := n.Parent(); current != nil; current = current.parent {
		if current.IsClassifier() {
			return current
		}
	}
	return nil
}

// EnclosingOfType finds the nearest ancestor of a specific type
func (n *Node) EnclosingOfType(nodeType NodeType) *Node {
	for current := n.Parent(); current != nil; current = current.parent {
		if current.Type == nodeType {
			return current
		}
	}
	return nil
}

// EnclosingNonExpression returns the nearest ancestor (or the node itself)
// that is not an expression or type.
func (n *Node) EnclosingNonExpression() *Node {
	current := n
	for current != nil && (current.IsExpression() || current.IsType()) {
		current = current.parent
	}
	return current
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch {
	case n.Name != "":
		return fmt.Sprintf("%s(%s)", n.Type, n.Name)
	case n.Value != "":
		return fmt.Sprintf("%s(%s)", n.Type, n.Value)
	case n.Op != "":
		return fmt.Sprintf("%s(%s)", n.Type, n.Op)
	}
	return string(n.Type)
}

// Label returns the node label used by structural distance computations
func (n *Node) Label() string {
	return n.LabelWith(n.Name)
}

// LabelWith returns the label the node would have under another name
func (n *Node) LabelWith(name string) string {
	var sb strings.Builder
	sb.WriteString(string(n.Type))
	for _, part := range []string{name, n.Value, n.Op} {
		if part != "" {
			sb.WriteByte(':')
			sb.WriteString(part)
		}
	}
	return sb.String()
}

// Walk traverses the AST using depth-first search
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil || !visitor(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// Find finds all nodes matching a predicate
func (n *Node) Find(predicate func(*Node) bool) []*Node {
	var results []*Node
	n.Walk(func(node *Node) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindByType finds all nodes of a specific type
func (n *Node) FindByType(nodeType NodeType) []*Node {
	return n.Find(func(node *Node) bool {
		return node.Type == nodeType
	})
}

// Size returns the number of nodes in the subtree
func (n *Node) Size() int {
	size := 0
	n.Walk(func(*Node) bool {
		size++
		return true
	})
	return size
}
