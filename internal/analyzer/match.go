package analyzer

import (
	"github.com/ludo-technologies/variscan/internal/parser"
)

// Match pairs a node of the left tree with its counterpart in the right
// tree. Either side may be nil for nodes that exist on one side only.
type Match struct {
	Left  *parser.Node
	Right *parser.Node
}

// IsPair reports whether both sides are present
func (m *Match) IsPair() bool {
	return m != nil && m.Left != nil && m.Right != nil
}

// Side returns the left or right node of the match
func (m *Match) Side(left bool) *parser.Node {
	if m == nil {
		return nil
	}
	if left {
		return m.Left
	}
	return m.Right
}

// Prefer returns the preferred side when present, otherwise the other one
func (m *Match) Prefer(left bool) *parser.Node {
	if n := m.Side(left); n != nil {
		return n
	}
	return m.Side(!left)
}

// ResourceMatch records the pair of source files behind a matched
// compilation unit
type ResourceMatch struct {
	LeftPath  string `json:"left_path" yaml:"left_path"`
	RightPath string `json:"right_path" yaml:"right_path"`
}

// MatchModel is the result of matching two trees. Matches are kept in
// insertion order and indexed by node id on both sides, so both trees must
// be allocated from the same arena.
type MatchModel struct {
	matches   []*Match
	byNode    map[parser.NodeID]*Match
	resources []ResourceMatch
}

// NewMatchModel creates an empty match model
func NewMatchModel() *MatchModel {
	return &MatchModel{
		byNode: make(map[parser.NodeID]*Match),
	}
}

// Add records a match. Nodes that are already indexed keep their first match.
func (mm *MatchModel) Add(left, right *parser.Node) *Match {
	if left == nil && right == nil {
		return nil
	}
	m := &Match{Left: left, Right: right}
	mm.matches = append(mm.matches, m)
	for _, n := range []*parser.Node{left, right} {
		if n == nil {
			continue
		}
		if _, exists := mm.byNode[n.ID]; !exists {
			mm.byNode[n.ID] = m
		}
	}
	if m.IsPair() && left.Type == parser.NodeCompilationUnit {
		mm.resources = append(mm.resources, ResourceMatch{
			LeftPath:  resourcePath(left),
			RightPath: resourcePath(right),
		})
	}
	return m
}

func resourcePath(unit *parser.Node) string {
	if unit.Location.File != "" {
		return unit.Location.File
	}
	return unit.QualifiedName()
}

// ForNode returns the match containing the node, or nil
func (mm *MatchModel) ForNode(n *parser.Node) *Match {
	if mm == nil || n == nil {
		return nil
	}
	return mm.byNode[n.ID]
}

// Counterpart returns the node matched with n on the other side, or nil
func (mm *MatchModel) Counterpart(n *parser.Node) *parser.Node {
	m := mm.ForNode(n)
	if m == nil {
		return nil
	}
	switch n {
	case m.Left:
		return m.Right
	case m.Right:
		return m.Left
	}
	return nil
}

// Matches returns all matches in insertion order
func (mm *MatchModel) Matches() []*Match {
	return mm.matches
}

// Resources returns the matched compilation unit files in insertion order
func (mm *MatchModel) Resources() []ResourceMatch {
	return mm.resources
}

// Len returns the number of matches
func (mm *MatchModel) Len() int {
	return len(mm.matches)
}

// Pairs returns the number of matches with both sides present
func (mm *MatchModel) Pairs() int {
	count := 0
	for _, m := range mm.matches {
		if m.IsPair() {
			count++
		}
	}
	return count
}
