package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/variscan/internal/parser"
)

// TreeNode represents a node in the ordered tree for the APTED algorithm
type TreeNode struct {
	ID    int
	Label string

	Children []*TreeNode
	Parent   *TreeNode

	// APTED-specific indices
	PostOrderID  int
	LeftMostLeaf int
	KeyRoot      bool

	OriginalNode *parser.Node
}

// NewTreeNode creates a new tree node with the given ID and label
func NewTreeNode(id int, label string) *TreeNode {
	return &TreeNode{
		ID:       id,
		Label:    label,
		Children: []*TreeNode{},
	}
}

// AddChild adds a child node to this node
func (t *TreeNode) AddChild(child *TreeNode) {
	if child != nil {
		child.Parent = t
		t.Children = append(t.Children, child)
	}
}

// IsLeaf returns true if this node has no children
func (t *TreeNode) IsLeaf() bool {
	return len(t.Children) == 0
}

// Size returns the size of the subtree rooted at this node
func (t *TreeNode) Size() int {
	return t.SizeWithDepthLimit(1000)
}

// SizeWithDepthLimit returns the size with maximum recursion depth limit
func (t *TreeNode) SizeWithDepthLimit(maxDepth int) int {
	if maxDepth <= 0 {
		return 1
	}

	size := 1
	for _, child := range t.Children {
		size += child.SizeWithDepthLimit(maxDepth - 1)
	}
	return size
}

// Height returns the height of the subtree rooted at this node
func (t *TreeNode) Height() int {
	return t.HeightWithDepthLimit(1000)
}

// HeightWithDepthLimit returns the height with maximum recursion depth limit
func (t *TreeNode) HeightWithDepthLimit(maxDepth int) int {
	if maxDepth <= 0 || t.IsLeaf() {
		return 0
	}

	maxHeight := 0
	for _, child := range t.Children {
		if h := child.HeightWithDepthLimit(maxDepth - 1); h > maxHeight {
			maxHeight = h
		}
	}
	return maxHeight + 1
}

// String returns a string representation of the node
func (t *TreeNode) String() string {
	return fmt.Sprintf("Node{ID: %d, Label: %s, Children: %d}", t.ID, t.Label, len(t.Children))
}

// TreeConverter converts parser AST nodes to APTED tree nodes
type TreeConverter struct {
	nextID     int
	ownedOnly  bool
	normalizer func(string) string
}

// NewTreeConverter creates a converter that includes the whole subtree
func NewTreeConverter() *TreeConverter {
	return &TreeConverter{}
}

// NewTreeConverterWithConfig creates a converter. With ownedOnly set, nested
// diff units below the root are left out, so the tree reflects only what the
// root owns. The normalizer, if any, is applied to names in labels.
func NewTreeConverterWithConfig(ownedOnly bool, normalizer func(string) string) *TreeConverter {
	return &TreeConverter{ownedOnly: ownedOnly, normalizer: normalizer}
}

// ConvertAST converts a parser AST node to an APTED tree
func (tc *TreeConverter) ConvertAST(astNode *parser.Node) *TreeNode {
	return tc.convert(astNode, true)
}

func (tc *TreeConverter) convert(astNode *parser.Node, root bool) *TreeNode {
	if astNode == nil {
		return nil
	}
	if tc.ownedOnly && !root && astNode.IsDiffUnit() {
		return nil
	}

	treeNode := NewTreeNode(tc.nextID, tc.getNodeLabel(astNode))
	tc.nextID++
	treeNode.OriginalNode = astNode

	for _, child := range astNode.Children {
		if childNode := tc.convert(child, false); childNode != nil {
			treeNode.AddChild(childNode)
		}
	}
	return treeNode
}

// getNodeLabel extracts the label from the AST node
func (tc *TreeConverter) getNodeLabel(astNode *parser.Node) string {
	if tc.normalizer != nil && astNode.Name != "" && (astNode.IsClassifier() || astNode.Type == parser.NodeConstructor) {
		return astNode.LabelWith(tc.normalizer(astNode.Name))
	}
	return astNode.Label()
}

// PostOrderTraversal performs post-order traversal and assigns post-order IDs
func PostOrderTraversal(root *TreeNode) {
	if root == nil {
		return
	}

	postOrderID := 0
	postOrderTraversalRecursive(root, &postOrderID)
}

func postOrderTraversalRecursive(node *TreeNode, postOrderID *int) {
	if node == nil {
		return
	}

	for _, child := range node.Children {
		postOrderTraversalRecursive(child, postOrderID)
	}

	node.PostOrderID = *postOrderID
	*postOrderID++
}

// ComputeLeftMostLeaves computes left-most leaf descendants for all nodes
func ComputeLeftMostLeaves(root *TreeNode) {
	if root == nil {
		return
	}
	computeLeftMostLeavesRecursive(root)
}

func computeLeftMostLeavesRecursive(node *TreeNode) int {
	if node.IsLeaf() {
		node.LeftMostLeaf = node.PostOrderID
		return node.LeftMostLeaf
	}

	leftMostLeaf := computeLeftMostLeavesRecursive(node.Children[0])
	node.LeftMostLeaf = leftMostLeaf

	for i := 1; i < len(node.Children); i++ {
		computeLeftMostLeavesRecursive(node.Children[i])
	}

	return leftMostLeaf
}

// ComputeKeyRoots identifies key roots for path decomposition
func ComputeKeyRoots(root *TreeNode) []int {
	if root == nil {
		return []int{}
	}

	keyRoots := []int{}
	visited := make(map[int]bool)

	computeKeyRootsRecursive(root, &keyRoots, visited)

	return keyRoots
}

func computeKeyRootsRecursive(node *TreeNode, keyRoots *[]int, visited map[int]bool) {
	if node == nil {
		return
	}

	// A node is a key root if its left-most leaf hasn't been visited
	if !visited[node.LeftMostLeaf] {
		node.KeyRoot = true
		*keyRoots = append(*keyRoots, node.PostOrderID)
		visited[node.LeftMostLeaf] = true
	}

	for _, child := range node.Children {
		computeKeyRootsRecursive(child, keyRoots, visited)
	}
}

// PrepareTreeForAPTED computes post-order ids, left-most leaves and key roots
func PrepareTreeForAPTED(root *TreeNode) []int {
	if root == nil {
		return []int{}
	}

	PostOrderTraversal(root)
	ComputeLeftMostLeaves(root)
	return ComputeKeyRoots(root)
}
