package parser

import (
	"fmt"
)

// Visitor defines the interface for visiting AST nodes
type Visitor interface {
	// Visit is called for each node in the AST
	// Return false to skip the node's children
	Visit(node *Node) bool
}

// Accept implements the visitor pattern for AST nodes
func (n *Node) Accept(visitor Visitor) {
	if n == nil {
		return
	}

	if !visitor.Visit(n) {
		return
	}

	for _, child := range n.Children {
		child.Accept(visitor)
	}
}

// StatisticsVisitor collects statistics about the AST
type StatisticsVisitor struct {
	NodeCounts map[NodeType]int
	TotalNodes int
	MaxDepth   int
	curDepth   int
}

// NewStatisticsVisitor creates a visitor that collects statistics
func NewStatisticsVisitor() *StatisticsVisitor {
	return &StatisticsVisitor{
		NodeCounts: make(map[NodeType]int),
	}
}

// Visit implements the Visitor interface
func (v *StatisticsVisitor) Visit(node *Node) bool {
	v.TotalNodes++
	v.NodeCounts[node.Type]++

	v.curDepth++
	if v.curDepth > v.MaxDepth {
		v.MaxDepth = v.curDepth
	}

	for _, child := range node.Children {
		child.Accept(v)
	}

	v.curDepth--
	return false
}

// ValidatorVisitor checks containment consistency and the naming of
// declarations. Hand-written AST documents are the usual source of errors.
type ValidatorVisitor struct {
	errors []string
}

// NewValidatorVisitor creates a visitor that validates the AST
func NewValidatorVisitor() *ValidatorVisitor {
	return &ValidatorVisitor{
		errors: []string{},
	}
}

// Visit implements the Visitor interface
func (v *ValidatorVisitor) Visit(node *Node) bool {
	switch {
	case node.IsClassifier(), node.Type == NodeMethod, node.Type == NodeField,
		node.Type == NodePackage, node.Type == NodeImport:
		if node.Name == "" {
			v.errors = append(v.errors, fmt.Sprintf("%s at %s missing name", node.Type, node.Location))
		}
	case node.Type == NodeIf, node.Type == NodeWhile, node.Type == NodeDoWhile:
		if node.FirstChild(RoleCondition) == nil {
			v.errors = append(v.errors, fmt.Sprintf("%s at %s missing condition", node.Type, node.Location))
		}
	case node.Type == NodeBinary:
		if len(node.ChildrenByRole(RoleOperand)) != 2 {
			v.errors = append(v.errors, fmt.Sprintf("Binary at %s missing operand", node.Location))
		}
	}

	for _, child := range node.Children {
		if child.Parent() != node {
			v.errors = append(v.errors, fmt.Sprintf("%s at %s has incorrect parent (expected %s)",
				child.Type, child.Location, node.Type))
		}
	}
	return true
}

// GetErrors returns validation errors
func (v *ValidatorVisitor) GetErrors() []string {
	return v.errors
}

// IsValid returns true if no errors were found
func (v *ValidatorVisitor) IsValid() bool {
	return len(v.errors) == 0
}
