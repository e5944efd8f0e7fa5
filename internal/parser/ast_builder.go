package parser

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder converts tree-sitter Java parse trees to the internal AST
type ASTBuilder struct {
	arena   *Arena
	source  []byte
	file    string
	pkg     string
	imports map[string]string // simple name -> qualified name
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(arena *Arena, source []byte, file string) *ASTBuilder {
	return &ASTBuilder{
		arena:   arena,
		source:  source,
		file:    file,
		imports: make(map[string]string),
	}
}

// Build converts a tree-sitter tree into a CompilationUnit node
func (b *ASTBuilder) Build(tree *sitter.Tree) (*Node, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("root node is nil")
	}
	if rootNode.Type() != "program" {
		return nil, fmt.Errorf("unexpected root node %q", rootNode.Type())
	}

	unit := b.newNode(NodeCompilationUnit, rootNode)
	for i := 0; i < int(rootNode.NamedChildCount()); i++ {
		child := rootNode.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			pkg := b.buildPackage(child)
			unit.AddChild(RolePackage, pkg)
		case "import_declaration":
			unit.AddChild(RoleImport, b.buildImport(child))
		case "class_declaration", "interface_declaration", "enum_declaration",
			"annotation_type_declaration", "record_declaration":
			unit.AddChild(RoleMember, b.buildClassifier(child))
		}
	}

	bindIdentifiers(unit)
	return unit, nil
}

func (b *ASTBuilder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.source)
}

func (b *ASTBuilder) newNode(nodeType NodeType, ts *sitter.Node) *Node {
	n := b.arena.New(nodeType)
	if ts != nil {
		start, end := ts.StartPoint(), ts.EndPoint()
		n.Location = Location{
			File:      b.file,
			StartLine: int(start.Row) + 1,
			StartCol:  int(start.Column),
			EndLine:   int(end.Row) + 1,
			EndCol:    int(end.Column),
		}
	}
	return n
}

func (b *ASTBuilder) buildPackage(ts *sitter.Node) *Node {
	pkg := b.newNode(NodePackage, ts)
	if ts.NamedChildCount() > 0 {
		pkg.Name = b.text(ts.NamedChild(0))
	}
	b.pkg = pkg.Name
	return pkg
}

func (b *ASTBuilder) buildImport(ts *sitter.Node) *Node {
	imp := b.newNode(NodeImport, ts)
	for i := 0; i < int(ts.ChildCount()); i++ {
		c := ts.Child(i)
		switch c.Type() {
		case "static":
			imp.SetAttr("static", "true")
		case "asterisk":
			imp.SetAttr("onDemand", "true")
		case "identifier", "scoped_identifier":
			imp.Name = b.text(c)
		}
	}
	if imp.Attr("onDemand") == nil {
		simple := imp.Name[strings.LastIndex(imp.Name, ".")+1:]
		b.imports[simple] = imp.Name
	}
	imp.SetRef(RefImported, Unresolved(imp.Name))
	return imp
}

func (b *ASTBuilder) modifiers(ts *sitter.Node) []string {
	var mods []string
	for i := 0; i < int(ts.ChildCount()); i++ {
		c := ts.Child(i)
		if c.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(c.ChildCount()); j++ {
			mods = append(mods, b.text(c.Child(j)))
		}
	}
	return mods
}

func (b *ASTBuilder) buildClassifier(ts *sitter.Node) *Node {
	var nodeType NodeType
	switch ts.Type() {
	case "interface_declaration":
		nodeType = NodeInterface
	case "enum_declaration":
		nodeType = NodeEnum
	case "annotation_type_declaration":
		nodeType = NodeAnnotation
	default:
		nodeType = NodeClass
	}
	cls := b.newNode(nodeType, ts)
	cls.Name = b.text(ts.ChildByFieldName("name"))
	cls.Modifiers = b.modifiers(ts)

	if super := ts.ChildByFieldName("superclass"); super != nil && super.NamedChildCount() > 0 {
		cls.AddChild(RoleSuper, b.buildType(super.NamedChild(0)))
	}
	if ifaces := ts.ChildByFieldName("interfaces"); ifaces != nil {
		for _, t := range b.typeList(ifaces) {
			cls.AddChild(RoleSuper, t)
		}
	}

	body := ts.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "field_declaration", "constant_declaration":
			for _, f := range b.buildFields(member) {
				cls.AddChild(RoleMember, f)
			}
		case "method_declaration", "annotation_type_element_declaration":
			cls.AddChild(RoleMember, b.buildMethod(member, NodeMethod))
		case "constructor_declaration", "compact_constructor_declaration":
			cls.AddChild(RoleMember, b.buildMethod(member, NodeConstructor))
		case "enum_constant":
			cls.AddChild(RoleMember, b.buildEnumConstant(member))
		case "enum_body_declarations":
			for j := 0; j < int(member.NamedChildCount()); j++ {
				inner := member.NamedChild(j)
				switch inner.Type() {
				case "field_declaration":
					for _, f := range b.buildFields(inner) {
						cls.AddChild(RoleMember, f)
					}
				case "method_declaration":
					cls.AddChild(RoleMember, b.buildMethod(inner, NodeMethod))
				case "constructor_declaration":
					cls.AddChild(RoleMember, b.buildMethod(inner, NodeConstructor))
				}
			}
		case "class_declaration", "interface_declaration", "enum_declaration",
			"annotation_type_declaration", "record_declaration":
			cls.AddChild(RoleMember, b.buildClassifier(member))
		}
	}
	return cls
}

func (b *ASTBuilder) typeList(ts *sitter.Node) []*Node {
	var types []*Node
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		c := ts.NamedChild(i)
		if c.Type() == "type_list" {
			types = append(types, b.typeList(c)...)
			continue
		}
		if t := b.buildType(c); t != nil {
			types = append(types, t)
		}
	}
	return types
}

func (b *ASTBuilder) buildEnumConstant(ts *sitter.Node) *Node {
	c := b.newNode(NodeEnumConstant, ts)
	c.Name = b.text(ts.ChildByFieldName("name"))
	if args := ts.ChildByFieldName("arguments"); args != nil {
		b.addArguments(c, args)
	}
	return c
}

func (b *ASTBuilder) buildFields(ts *sitter.Node) []*Node {
	var fields []*Node
	mods := b.modifiers(ts)
	typeNode := ts.ChildByFieldName("type")
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		decl := ts.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		f := b.newNode(NodeField, decl)
		f.Name = b.text(decl.ChildByFieldName("name"))
		f.Modifiers = mods
		f.AddChild(RoleType, b.buildType(typeNode))
		if value := decl.ChildByFieldName("value"); value != nil {
			f.AddChild(RoleInit, b.buildExpression(value))
		}
		fields = append(fields, f)
	}
	return fields
}

func (b *ASTBuilder) buildMethod(ts *sitter.Node, nodeType NodeType) *Node {
	m := b.newNode(nodeType, ts)
	m.Name = b.text(ts.ChildByFieldName("name"))
	m.Modifiers = b.modifiers(ts)
	if t := ts.ChildByFieldName("type"); t != nil {
		m.AddChild(RoleType, b.buildType(t))
	}
	if params := ts.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p.Type() != "formal_parameter" && p.Type() != "spread_parameter" {
				continue
			}
			m.AddChild(RoleParam, b.buildParameter(p))
		}
	}
	if body := ts.ChildByFieldName("body"); body != nil {
		m.AddChild(RoleBody, b.buildBlock(body))
	}
	return m
}

func (b *ASTBuilder) buildParameter(ts *sitter.Node) *Node {
	p := b.newNode(NodeParameter, ts)
	p.Modifiers = b.modifiers(ts)
	if name := ts.ChildByFieldName("name"); name != nil {
		p.Name = b.text(name)
	}
	var typeNode *sitter.Node
	if t := ts.ChildByFieldName("type"); t != nil {
		typeNode = t
	}
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		c := ts.NamedChild(i)
		switch c.Type() {
		case "variable_declarator":
			p.Name = b.text(c.ChildByFieldName("name"))
		case "catch_type":
			typeNode = c
		case "identifier":
			if p.Name == "" {
				p.Name = b.text(c)
			}
		default:
			if typeNode == nil && isTypeNode(c.Type()) {
				typeNode = c
			}
		}
	}
	if ts.Type() == "spread_parameter" {
		p.SetAttr("varargs", "true")
	}
	if typeNode != nil {
		p.AddChild(RoleType, b.buildType(typeNode))
	}
	return p
}

func isComment(t string) bool {
	return t == "line_comment" || t == "block_comment" || t == "comment"
}

func isTypeNode(t string) bool {
	switch t {
	case "type_identifier", "scoped_type_identifier", "generic_type", "array_type",
		"integral_type", "floating_point_type", "boolean_type", "void_type":
		return true
	default:
		return false
	}
}

func (b *ASTBuilder) buildType(ts *sitter.Node) *Node {
	if ts == nil {
		return nil
	}
	switch ts.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		t := b.newNode(NodePrimitiveType, ts)
		t.Name = b.text(ts)
		return t
	case "array_type":
		t := b.buildType(ts.ChildByFieldName("element"))
		if t != nil {
			t.SetAttr("dimensions", b.text(ts.ChildByFieldName("dimensions")))
		}
		return t
	case "generic_type":
		var base *Node
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			c := ts.NamedChild(i)
			switch c.Type() {
			case "type_arguments":
				if base == nil {
					continue
				}
				for j := 0; j < int(c.NamedChildCount()); j++ {
					base.AddChild(RoleArgument, b.buildType(c.NamedChild(j)))
				}
			default:
				base = b.buildType(c)
			}
		}
		return base
	}

	name := b.text(ts)
	t := b.newNode(NodeTypeReference, ts)
	t.Name = name
	t.SetRef(RefTarget, Unresolved(b.qualify(name)))
	return t
}

// qualify maps a type name to its qualified path using the imports and
// package of the compilation unit being built.
func (b *ASTBuilder) qualify(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	if qn, ok := b.imports[name]; ok {
		return qn
	}
	if b.pkg != "" {
		return b.pkg + "." + name
	}
	return name
}

func (b *ASTBuilder) buildBlock(ts *sitter.Node) *Node {
	if ts == nil {
		return nil
	}
	block := b.newNode(NodeBlock, ts)
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		if isComment(child.Type()) {
			continue
		}
		for _, stmt := range b.buildStatements(child) {
			block.AddChild(RoleBody, stmt)
		}
	}
	return block
}

// buildStatements returns one node per statement; local variable
// declarations with several declarators expand to several statements.
func (b *ASTBuilder) buildStatements(ts *sitter.Node) []*Node {
	if ts.Type() == "local_variable_declaration" {
		var locals []*Node
		typeNode := ts.ChildByFieldName("type")
		mods := b.modifiers(ts)
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			decl := ts.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			v := b.newNode(NodeLocalVariable, ts)
			v.Name = b.text(decl.ChildByFieldName("name"))
			v.Modifiers = mods
			v.AddChild(RoleType, b.buildType(typeNode))
			if value := decl.ChildByFieldName("value"); value != nil {
				v.AddChild(RoleInit, b.buildExpression(value))
			}
			locals = append(locals, v)
		}
		return locals
	}
	if stmt := b.buildStatement(ts); stmt != nil {
		return []*Node{stmt}
	}
	return nil
}

func (b *ASTBuilder) buildStatement(ts *sitter.Node) *Node {
	if ts == nil {
		return nil
	}
	switch ts.Type() {
	case "block", "constructor_body":
		return b.buildBlock(ts)
	case "local_variable_declaration":
		stmts := b.buildStatements(ts)
		if len(stmts) == 1 {
			return stmts[0]
		}
		block := b.newNode(NodeBlock, ts)
		block.SetAttr("synthetic", "true")
		for _, s := range stmts {
			block.AddChild(RoleBody, s)
		}
		return block
	case "expression_statement":
		s := b.newNode(NodeExpressionStatement, ts)
		if ts.NamedChildCount() > 0 {
			s.AddChild(RoleValue, b.buildExpression(ts.NamedChild(0)))
		}
		return s
	case "explicit_constructor_invocation":
		s := b.newNode(NodeExpressionStatement, ts)
		call := b.newNode(NodeMethodCall, ts)
		call.Name = b.text(ts.ChildByFieldName("constructor"))
		if args := ts.ChildByFieldName("arguments"); args != nil {
			b.addArguments(call, args)
		}
		s.AddChild(RoleValue, call)
		return s
	case "return_statement":
		s := b.newNode(NodeReturn, ts)
		if ts.NamedChildCount() > 0 {
			s.AddChild(RoleValue, b.buildExpression(ts.NamedChild(0)))
		}
		return s
	case "if_statement":
		s := b.newNode(NodeIf, ts)
		s.AddChild(RoleCondition, b.buildExpression(ts.ChildByFieldName("condition")))
		s.AddChild(RoleThen, b.buildStatement(ts.ChildByFieldName("consequence")))
		if alt := ts.ChildByFieldName("alternative"); alt != nil {
			s.AddChild(RoleElse, b.buildStatement(alt))
		}
		return s
	case "for_statement":
		s := b.newNode(NodeFor, ts)
		for i := 0; i < int(ts.ChildCount()); i++ {
			switch ts.FieldNameForChild(i) {
			case "init":
				c := ts.Child(i)
				if c.Type() == "local_variable_declaration" {
					for _, local := range b.buildStatements(c) {
						s.AddChild(RoleInit, local)
					}
				} else {
					s.AddChild(RoleInit, b.buildExpression(c))
				}
			case "update":
				s.AddChild(RoleUpdate, b.buildExpression(ts.Child(i)))
			}
		}
		if cond := ts.ChildByFieldName("condition"); cond != nil {
			s.AddChild(RoleCondition, b.buildExpression(cond))
		}
		s.AddChild(RoleBody, b.buildStatement(ts.ChildByFieldName("body")))
		return s
	case "enhanced_for_statement":
		s := b.newNode(NodeForEach, ts)
		s.Name = b.text(ts.ChildByFieldName("name"))
		s.AddChild(RoleType, b.buildType(ts.ChildByFieldName("type")))
		s.AddChild(RoleValue, b.buildExpression(ts.ChildByFieldName("value")))
		s.AddChild(RoleBody, b.buildStatement(ts.ChildByFieldName("body")))
		return s
	case "while_statement":
		s := b.newNode(NodeWhile, ts)
		s.AddChild(RoleCondition, b.buildExpression(ts.ChildByFieldName("condition")))
		s.AddChild(RoleBody, b.buildStatement(ts.ChildByFieldName("body")))
		return s
	case "do_statement":
		s := b.newNode(NodeDoWhile, ts)
		s.AddChild(RoleBody, b.buildStatement(ts.ChildByFieldName("body")))
		s.AddChild(RoleCondition, b.buildExpression(ts.ChildByFieldName("condition")))
		return s
	case "switch_statement", "switch_expression":
		return b.buildSwitch(ts)
	case "try_statement", "try_with_resources_statement":
		return b.buildTry(ts)
	case "throw_statement":
		s := b.newNode(NodeThrow, ts)
		if ts.NamedChildCount() > 0 {
			s.AddChild(RoleValue, b.buildExpression(ts.NamedChild(0)))
		}
		return s
	case "break_statement", "continue_statement":
		nodeType := NodeBreak
		if ts.Type() == "continue_statement" {
			nodeType = NodeContinue
		}
		s := b.newNode(nodeType, ts)
		if ts.NamedChildCount() > 0 {
			s.Name = b.text(ts.NamedChild(0))
		}
		return s
	case "synchronized_statement":
		s := b.newNode(NodeSynchronized, ts)
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			c := ts.NamedChild(i)
			if c.Type() == "block" {
				s.AddChild(RoleBody, b.buildBlock(c))
			} else {
				s.AddChild(RoleValue, b.buildExpression(c))
			}
		}
		return s
	case "assert_statement":
		s := b.newNode(NodeAssert, ts)
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			s.AddChild(RoleCondition, b.buildExpression(ts.NamedChild(i)))
		}
		return s
	case "labeled_statement":
		s := b.newNode(NodeLabeled, ts)
		for i := 0; i < int(ts.NamedChildCount()); i++ {
			c := ts.NamedChild(i)
			if c.Type() == "identifier" && s.Name == "" {
				s.Name = b.text(c)
				continue
			}
			s.AddChild(RoleBody, b.buildStatement(c))
		}
		return s
	case ";":
		return b.newNode(NodeEmpty, ts)
	case "line_comment", "block_comment", "comment":
		return nil
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		// local classes are kept opaque inside the statement list
		s := b.newNode(NodeExpressionStatement, ts)
		s.AddChild(RoleValue, b.opaque(ts))
		return s
	}

	s := b.newNode(NodeExpressionStatement, ts)
	s.AddChild(RoleValue, b.buildExpression(ts))
	return s
}

func (b *ASTBuilder) buildSwitch(ts *sitter.Node) *Node {
	s := b.newNode(NodeSwitch, ts)
	s.AddChild(RoleCondition, b.buildExpression(ts.ChildByFieldName("condition")))
	body := ts.ChildByFieldName("body")
	if body == nil {
		return s
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		group := body.NamedChild(i)
		if group.Type() != "switch_block_statement_group" && group.Type() != "switch_rule" {
			continue
		}
		c := b.newNode(NodeSwitchCase, group)
		for j := 0; j < int(group.NamedChildCount()); j++ {
			part := group.NamedChild(j)
			if part.Type() == "switch_label" {
				c.Name = strings.TrimSpace(strings.Join([]string{c.Name, b.text(part)}, " "))
				continue
			}
			for _, stmt := range b.buildStatements(part) {
				c.AddChild(RoleBody, stmt)
			}
		}
		s.AddChild(RoleCase, c)
	}
	return s
}

func (b *ASTBuilder) buildTry(ts *sitter.Node) *Node {
	s := b.newNode(NodeTry, ts)
	if res := ts.ChildByFieldName("resources"); res != nil {
		s.AddChild(RoleInit, b.opaque(res))
	}
	s.AddChild(RoleBody, b.buildBlock(ts.ChildByFieldName("body")))
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		c := ts.NamedChild(i)
		switch c.Type() {
		case "catch_clause":
			catch := b.newNode(NodeCatch, c)
			for j := 0; j < int(c.NamedChildCount()); j++ {
				part := c.NamedChild(j)
				if part.Type() == "catch_formal_parameter" {
					catch.AddChild(RoleParam, b.buildParameter(part))
				}
			}
			if body := c.ChildByFieldName("body"); body != nil {
				catch.AddChild(RoleBody, b.buildBlock(body))
			}
			s.AddChild(RoleCatch, catch)
		case "finally_clause":
			if c.NamedChildCount() > 0 {
				s.AddChild(RoleFinally, b.buildBlock(c.NamedChild(0)))
			}
		}
	}
	return s
}

func (b *ASTBuilder) addArguments(parent *Node, args *sitter.Node) {
	for i := 0; i < int(args.NamedChildCount()); i++ {
		parent.AddChild(RoleArgument, b.buildExpression(args.NamedChild(i)))
	}
}

// opaque keeps a construct the builder does not model as a literal holding
// its source text, so that changes to it are still detected.
func (b *ASTBuilder) opaque(ts *sitter.Node) *Node {
	n := b.newNode(NodeLiteral, ts)
	n.Value = b.text(ts)
	n.SetAttr("opaque", ts.Type())
	return n
}

func (b *ASTBuilder) buildExpression(ts *sitter.Node) *Node {
	if ts == nil {
		return nil
	}
	switch ts.Type() {
	case "parenthesized_expression":
		if ts.NamedChildCount() > 0 {
			return b.buildExpression(ts.NamedChild(0))
		}
		return nil
	case "identifier":
		n := b.newNode(NodeIdentifier, ts)
		n.Name = b.text(ts)
		return n
	case "this":
		return b.newNode(NodeThis, ts)
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "decimal_floating_point_literal",
		"hex_floating_point_literal", "string_literal", "character_literal",
		"text_block", "true", "false", "null_literal":
		n := b.newNode(NodeLiteral, ts)
		n.Value = b.text(ts)
		n.SetAttr("kind", ts.Type())
		return n
	case "method_invocation":
		n := b.newNode(NodeMethodCall, ts)
		n.Name = b.text(ts.ChildByFieldName("name"))
		if obj := ts.ChildByFieldName("object"); obj != nil {
			n.AddChild(RoleTarget, b.buildExpression(obj))
		}
		if args := ts.ChildByFieldName("arguments"); args != nil {
			b.addArguments(n, args)
		}
		return n
	case "assignment_expression":
		n := b.newNode(NodeAssignment, ts)
		n.Op = b.text(ts.ChildByFieldName("operator"))
		n.AddChild(RoleTarget, b.buildExpression(ts.ChildByFieldName("left")))
		n.AddChild(RoleValue, b.buildExpression(ts.ChildByFieldName("right")))
		return n
	case "binary_expression":
		n := b.newNode(NodeBinary, ts)
		n.Op = b.text(ts.ChildByFieldName("operator"))
		n.AddChild(RoleOperand, b.buildExpression(ts.ChildByFieldName("left")))
		n.AddChild(RoleOperand, b.buildExpression(ts.ChildByFieldName("right")))
		return n
	case "unary_expression":
		n := b.newNode(NodeUnary, ts)
		n.Op = b.text(ts.ChildByFieldName("operator"))
		n.AddChild(RoleOperand, b.buildExpression(ts.ChildByFieldName("operand")))
		return n
	case "update_expression":
		n := b.newNode(NodeUnary, ts)
		text := b.text(ts)
		switch {
		case strings.HasPrefix(text, "++"), strings.HasPrefix(text, "--"):
			n.Op = text[:2]
		case strings.HasSuffix(text, "++"), strings.HasSuffix(text, "--"):
			n.Op = "post" + text[len(text)-2:]
		}
		if ts.NamedChildCount() > 0 {
			n.AddChild(RoleOperand, b.buildExpression(ts.NamedChild(0)))
		}
		return n
	case "object_creation_expression":
		n := b.newNode(NodeNew, ts)
		n.AddChild(RoleType, b.buildType(ts.ChildByFieldName("type")))
		if args := ts.ChildByFieldName("arguments"); args != nil {
			b.addArguments(n, args)
		}
		return n
	case "cast_expression":
		n := b.newNode(NodeCast, ts)
		n.AddChild(RoleType, b.buildType(ts.ChildByFieldName("type")))
		n.AddChild(RoleValue, b.buildExpression(ts.ChildByFieldName("value")))
		return n
	case "ternary_expression":
		n := b.newNode(NodeConditional, ts)
		n.AddChild(RoleCondition, b.buildExpression(ts.ChildByFieldName("condition")))
		n.AddChild(RoleThen, b.buildExpression(ts.ChildByFieldName("consequence")))
		n.AddChild(RoleElse, b.buildExpression(ts.ChildByFieldName("alternative")))
		return n
	case "field_access":
		n := b.newNode(NodeFieldAccess, ts)
		n.Name = b.text(ts.ChildByFieldName("field"))
		n.AddChild(RoleTarget, b.buildExpression(ts.ChildByFieldName("object")))
		return n
	case "array_access":
		n := b.newNode(NodeArrayAccess, ts)
		n.AddChild(RoleTarget, b.buildExpression(ts.ChildByFieldName("array")))
		n.AddChild(RoleArgument, b.buildExpression(ts.ChildByFieldName("index")))
		return n
	case "lambda_expression":
		n := b.newNode(NodeLambda, ts)
		if params := ts.ChildByFieldName("parameters"); params != nil {
			n.SetAttr("parameters", b.text(params))
		}
		body := ts.ChildByFieldName("body")
		if body != nil && body.Type() == "block" {
			n.AddChild(RoleBody, b.buildBlock(body))
		} else if body != nil {
			n.AddChild(RoleValue, b.buildExpression(body))
		}
		return n
	case "type_identifier", "scoped_type_identifier", "generic_type":
		return b.buildType(ts)
	}
	return b.opaque(ts)
}

// bindIdentifiers links identifiers to the local variable, parameter or field
// they name, searching enclosing scopes outward.
func bindIdentifiers(unit *Node) {
	unit.Walk(func(n *Node) bool {
		if n.Type != NodeIdentifier {
			return true
		}
		if decl := lookupDeclaration(n); decl != nil {
			n.SetRef(RefTarget, Resolved(decl))
		}
		return true
	})
}

func lookupDeclaration(ident *Node) *Node {
	child := ident
	for scope := ident.Parent(); scope != nil; child, scope = scope, scope.Parent() {
		switch {
		case scope.Type == NodeBlock || scope.Type == NodeSwitchCase:
			for _, stmt := range scope.Children {
				if stmt == child {
					break
				}
				if stmt.Type == NodeLocalVariable && stmt.Name == ident.Name {
					return stmt
				}
			}
		case scope.Type == NodeFor:
			for _, init := range scope.ChildrenByRole(RoleInit) {
				if init.Type == NodeLocalVariable && init.Name == ident.Name {
					return init
				}
			}
		case scope.Type == NodeForEach && scope.Name == ident.Name:
			return scope
		case scope.IsMethodLike() || scope.Type == NodeCatch:
			for _, p := range scope.ChildrenByRole(RoleParam) {
				if p.Name == ident.Name {
					return p
				}
			}
		case scope.IsClassifier():
			for _, m := range scope.ChildrenByRole(RoleMember) {
				if (m.Type == NodeField || m.Type == NodeEnumConstant) && m.Name == ident.Name {
					return m
				}
			}
		}
	}
	return nil
}
