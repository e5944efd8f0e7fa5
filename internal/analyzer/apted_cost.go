package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ludo-technologies/variscan/internal/constants"
)

// CostModel defines the interface for calculating edit operation costs
type CostModel interface {
	// Insert returns the cost of inserting a node
	Insert(node *TreeNode) float64

	// Delete returns the cost of deleting a node
	Delete(node *TreeNode) float64

	// Rename returns the cost of renaming node1 to node2
	Rename(node1, node2 *TreeNode) float64
}

// NewCostModel returns the cost model registered under name. An empty name
// selects the uniform model.
func NewCostModel(name string) (CostModel, error) {
	switch name {
	case "", constants.CostModelUniform:
		return NewDefaultCostModel(), nil
	case constants.CostModelJava:
		return NewJavaCostModel(), nil
	}
	return nil, fmt.Errorf("unknown cost model %q", name)
}

// DefaultCostModel implements a uniform cost model where all operations cost 1.0
type DefaultCostModel struct{}

// NewDefaultCostModel creates a new default cost model
func NewDefaultCostModel() *DefaultCostModel {
	return &DefaultCostModel{}
}

// Insert returns the cost of inserting a node (always 1.0)
func (c *DefaultCostModel) Insert(node *TreeNode) float64 {
	return 1.0
}

// Delete returns the cost of deleting a node (always 1.0)
func (c *DefaultCostModel) Delete(node *TreeNode) float64 {
	return 1.0
}

// Rename returns 0 for identical labels and 1 otherwise
func (c *DefaultCostModel) Rename(node1, node2 *TreeNode) float64 {
	if node1 == nil || node2 == nil {
		return 1.0
	}
	if node1.Label == node2.Label {
		return 0.0
	}
	return 1.0
}

// JavaCostModel weighs edits by node category: declarations and control flow
// are expensive to change, expressions are cheap.
type JavaCostModel struct {
	BaseInsertCost float64
	BaseDeleteCost float64
	BaseRenameCost float64

	// Whether to ignore differences in literal values
	IgnoreLiterals bool

	// Whether to ignore differences in identifier names
	IgnoreIdentifiers bool
}

// NewJavaCostModel creates a Java-aware cost model with default settings
func NewJavaCostModel() *JavaCostModel {
	return NewJavaCostModelWithConfig(false, false)
}

// NewJavaCostModelWithConfig creates a Java cost model with custom configuration
func NewJavaCostModelWithConfig(ignoreLiterals, ignoreIdentifiers bool) *JavaCostModel {
	return &JavaCostModel{
		BaseInsertCost:    1.0,
		BaseDeleteCost:    1.0,
		BaseRenameCost:    1.0,
		IgnoreLiterals:    ignoreLiterals,
		IgnoreIdentifiers: ignoreIdentifiers,
	}
}

// Insert returns the cost of inserting a node
func (c *JavaCostModel) Insert(node *TreeNode) float64 {
	if node == nil {
		return c.BaseInsertCost
	}
	return c.BaseInsertCost * c.getNodeTypeMultiplier(node.Label)
}

// Delete returns the cost of deleting a node
func (c *JavaCostModel) Delete(node *TreeNode) float64 {
	if node == nil {
		return c.BaseDeleteCost
	}
	return c.BaseDeleteCost * c.getNodeTypeMultiplier(node.Label)
}

// Rename returns the cost of renaming node1 to node2
func (c *JavaCostModel) Rename(node1, node2 *TreeNode) float64 {
	if node1 == nil || node2 == nil {
		return c.BaseRenameCost
	}
	if node1.Label == node2.Label {
		return 0.0
	}
	if c.shouldIgnoreDifference(node1.Label, node2.Label) {
		return 0.0
	}
	return c.BaseRenameCost * (1.0 - c.calculateLabelSimilarity(node1.Label, node2.Label))
}

func (c *JavaCostModel) getNodeTypeMultiplier(label string) float64 {
	switch base := baseNodeType(label); {
	case isStructuralType(base):
		return 1.5
	case isControlFlowType(base):
		return 1.3
	case isExpressionType(base):
		return 0.8
	case base == "Literal" && c.IgnoreLiterals:
		return 0.1
	case base == "Identifier" && c.IgnoreIdentifiers:
		return 0.2
	}
	return 1.0
}

var structuralTypes = []string{
	"CompilationUnit", "Package", "Import", "Class", "Interface", "Enum", "Annotation",
	"Method", "Constructor", "Field", "EnumConstant", "Parameter",
}

var controlFlowTypes = []string{
	"If", "For", "ForEach", "While", "DoWhile", "Switch", "SwitchCase", "Try", "Catch",
	"Throw", "Break", "Continue", "Return", "Synchronized", "Labeled",
}

var expressionTypes = []string{
	"MethodCall", "Assignment", "Binary", "Unary", "New", "Cast", "Conditional",
	"FieldAccess", "ArrayAccess", "Lambda",
}

func isStructuralType(base string) bool  { return slices.Contains(structuralTypes, base) }
func isControlFlowType(base string) bool { return slices.Contains(controlFlowTypes, base) }
func isExpressionType(base string) bool  { return slices.Contains(expressionTypes, base) }

// shouldIgnoreDifference determines if the difference between two labels should be ignored
func (c *JavaCostModel) shouldIgnoreDifference(label1, label2 string) bool {
	base1, base2 := baseNodeType(label1), baseNodeType(label2)
	if c.IgnoreLiterals && base1 == "Literal" && base2 == "Literal" {
		return true
	}
	if c.IgnoreIdentifiers && base1 == "Identifier" && base2 == "Identifier" {
		return true
	}
	return false
}

// calculateLabelSimilarity calculates similarity between two node labels
func (c *JavaCostModel) calculateLabelSimilarity(label1, label2 string) float64 {
	base1, base2 := baseNodeType(label1), baseNodeType(label2)

	if base1 == base2 {
		return 0.8
	}
	if areRelatedNodeTypes(base1, base2) {
		return 0.5
	}
	if (isStructuralType(base1) && isStructuralType(base2)) ||
		(isControlFlowType(base1) && isControlFlowType(base2)) ||
		(isExpressionType(base1) && isExpressionType(base2)) {
		return 0.3
	}
	return 0.0
}

// baseNodeType extracts the node type from a label such as "Method:run"
func baseNodeType(label string) string {
	base, _, _ := strings.Cut(label, ":")
	return base
}

func areRelatedNodeTypes(type1, type2 string) bool {
	relatedPairs := [][2]string{
		{"Method", "Constructor"},
		{"For", "ForEach"},
		{"While", "DoWhile"},
		{"Binary", "Unary"},
		{"Assignment", "LocalVariable"},
		{"If", "Conditional"},
		{"Class", "Interface"},
	}

	for _, pair := range relatedPairs {
		if (type1 == pair[0] && type2 == pair[1]) || (type1 == pair[1] && type2 == pair[0]) {
			return true
		}
	}
	return false
}
