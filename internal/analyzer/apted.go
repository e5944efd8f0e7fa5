package analyzer

import (
	"math"
	"sort"
)

// APTEDAnalyzer computes tree edit distances between statement subtrees.
// Based on Pawlik & Augsten's APTED algorithm.
type APTEDAnalyzer struct {
	costModel CostModel
}

// NewAPTEDAnalyzer creates a new APTED analyzer with the given cost model
func NewAPTEDAnalyzer(costModel CostModel) *APTEDAnalyzer {
	return &APTEDAnalyzer{costModel: costModel}
}

// ComputeDistance computes the tree edit distance between two trees
func (a *APTEDAnalyzer) ComputeDistance(tree1, tree2 *TreeNode) float64 {
	if tree1 == nil && tree2 == nil {
		return 0.0
	}
	if tree1 == nil {
		return a.computeInsertCost(tree2)
	}
	if tree2 == nil {
		return a.computeDeleteCost(tree1)
	}

	size1, size2 := tree1.Size(), tree2.Size()
	if size1 > 500 || size2 > 500 {
		return a.computeDistanceOptimized(tree1, tree2)
	}

	keyRoots1 := PrepareTreeForAPTED(tree1)
	keyRoots2 := PrepareTreeForAPTED(tree2)

	sort.Ints(keyRoots1)
	sort.Ints(keyRoots2)

	return a.apted(tree1, tree2, keyRoots1, keyRoots2)
}

// computeDistanceOptimized bounds the work spent on large trees
func (a *APTEDAnalyzer) computeDistanceOptimized(tree1, tree2 *TreeNode) float64 {
	size1, size2 := tree1.Size(), tree2.Size()
	sizeDiff := math.Abs(float64(size1 - size2))

	maxDistance := math.Max(float64(size1), float64(size2))
	if sizeDiff > maxDistance*0.8 {
		return sizeDiff
	}

	if size1 > 2000 || size2 > 2000 {
		return a.computeApproximateDistance(tree1, tree2)
	}

	keyRoots1 := PrepareTreeForAPTED(tree1)
	keyRoots2 := PrepareTreeForAPTED(tree2)

	sort.Ints(keyRoots1)
	sort.Ints(keyRoots2)

	return a.apted(tree1, tree2, keyRoots1, keyRoots2)
}

// computeApproximateDistance estimates the distance from shape alone
func (a *APTEDAnalyzer) computeApproximateDistance(tree1, tree2 *TreeNode) float64 {
	depthDiff := math.Abs(float64(tree1.Height() - tree2.Height()))
	sizeDiff := math.Abs(float64(tree1.Size() - tree2.Size()))
	return (depthDiff * 2.0) + (sizeDiff * 0.5)
}

func (a *APTEDAnalyzer) apted(tree1, tree2 *TreeNode, keyRoots1, keyRoots2 []int) float64 {
	nodes1 := a.getPostOrderNodes(tree1)
	nodes2 := a.getPostOrderNodes(tree2)

	size1 := len(nodes1)
	size2 := len(nodes2)

	td := make([][]float64, size1)
	for i := range td {
		td[i] = make([]float64, size2)
	}

	// key roots are processed bottom-up so subtree distances exist when needed
	for _, i := range keyRoots1 {
		for _, j := range keyRoots2 {
			a.computeForestDistance(nodes1, nodes2, i, j, td)
		}
	}

	return td[size1-1][size2-1]
}

// computeForestDistance fills the tree distance table for the key root pair
// (i, j). Forest rows and columns are relative to the left-most leaves.
func (a *APTEDAnalyzer) computeForestDistance(nodes1, nodes2 []*TreeNode, i, j int, td [][]float64) {
	lmlI := nodes1[i].LeftMostLeaf
	lmlJ := nodes2[j].LeftMostLeaf

	rows, cols := i-lmlI+2, j-lmlJ+2
	fd := make([][]float64, rows)
	for k := range fd {
		fd[k] = make([]float64, cols)
	}

	for x := 1; x < rows; x++ {
		fd[x][0] = fd[x-1][0] + a.costModel.Delete(nodes1[lmlI+x-1])
	}
	for y := 1; y < cols; y++ {
		fd[0][y] = fd[0][y-1] + a.costModel.Insert(nodes2[lmlJ+y-1])
	}

	for x := 1; x < rows; x++ {
		n1 := nodes1[lmlI+x-1]
		for y := 1; y < cols; y++ {
			n2 := nodes2[lmlJ+y-1]

			deleteCost := fd[x-1][y] + a.costModel.Delete(n1)
			insertCost := fd[x][y-1] + a.costModel.Insert(n2)

			if n1.LeftMostLeaf == lmlI && n2.LeftMostLeaf == lmlJ {
				renameCost := fd[x-1][y-1] + a.costModel.Rename(n1, n2)
				fd[x][y] = math.Min(deleteCost, math.Min(insertCost, renameCost))
				td[n1.PostOrderID][n2.PostOrderID] = fd[x][y]
			} else {
				px := n1.LeftMostLeaf - lmlI
				py := n2.LeftMostLeaf - lmlJ
				subtreeCost := fd[px][py] + td[n1.PostOrderID][n2.PostOrderID]
				fd[x][y] = math.Min(deleteCost, math.Min(insertCost, subtreeCost))
			}
		}
	}
}

// getPostOrderNodes returns all nodes in post-order
func (a *APTEDAnalyzer) getPostOrderNodes(root *TreeNode) []*TreeNode {
	if root == nil {
		return []*TreeNode{}
	}

	var nodes []*TreeNode
	a.postOrderTraversal(root, &nodes)

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].PostOrderID < nodes[j].PostOrderID
	})
	return nodes
}

func (a *APTEDAnalyzer) postOrderTraversal(node *TreeNode, nodes *[]*TreeNode) {
	if node == nil {
		return
	}
	for _, child := range node.Children {
		a.postOrderTraversal(child, nodes)
	}
	*nodes = append(*nodes, node)
}

func (a *APTEDAnalyzer) computeInsertCost(root *TreeNode) float64 {
	if root == nil {
		return 0.0
	}
	cost := a.costModel.Insert(root)
	for _, child := range root.Children {
		cost += a.computeInsertCost(child)
	}
	return cost
}

func (a *APTEDAnalyzer) computeDeleteCost(root *TreeNode) float64 {
	if root == nil {
		return 0.0
	}
	cost := a.costModel.Delete(root)
	for _, child := range root.Children {
		cost += a.computeDeleteCost(child)
	}
	return cost
}

// ComputeSimilarity computes a similarity score between two trees in [0, 1]
func (a *APTEDAnalyzer) ComputeSimilarity(tree1, tree2 *TreeNode) float64 {
	if tree1 == nil || tree2 == nil {
		if tree1 == nil && tree2 == nil {
			return 1.0
		}
		return 0.0
	}
	distance := a.ComputeDistance(tree1, tree2)

	maxSize := math.Max(float64(tree1.Size()), float64(tree2.Size()))
	if maxSize == 0 {
		return 1.0
	}
	return math.Max(0.0, 1.0-(distance/maxSize))
}
