package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ludo-technologies/variscan/internal/constants"
	"github.com/ludo-technologies/variscan/internal/parser"
	"github.com/ludo-technologies/variscan/internal/similarity"
)

// ErrNilRoot is returned when one of the trees to match is missing
var ErrNilRoot = errors.New("cannot match a nil tree root")

// MatcherConfig holds the matching parameters
type MatcherConfig struct {
	// StructuralThreshold is the minimum APTED similarity for pairing
	// statements the similarity rules consider different
	StructuralThreshold float64

	// ParallelThreshold is the sibling count from which similarity verdicts
	// are computed on a worker pool
	ParallelThreshold int

	// MaxWorkers bounds the worker pool, 0 means one per CPU
	MaxWorkers int

	// CostModel names the tree edit cost model, uniform when empty
	CostModel string
}

// DefaultMatcherConfig returns the default matching parameters
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		StructuralThreshold: constants.DefaultStructuralThreshold,
		ParallelThreshold:   constants.DefaultParallelThreshold,
		MaxWorkers:          constants.DefaultMaxWorkers,
		CostModel:           constants.DefaultCostModel,
	}
}

// Matcher pairs the nodes of two trees top-down.
//
// Children of every matched pair are paired role by role in two tiers.
// First, each left child takes the first unpaired right child the similarity
// checker considers similar. Leftover declarations are then paired by
// identity (kind and normalized name, plus the parameter types of methods),
// and leftover statements of the same kind are paired when their owned
// structure is close enough under APTED.
type Matcher struct {
	config   MatcherConfig
	registry *similarity.Registry
	checker  *similarity.Checker
	apted    *APTEDAnalyzer
	logger   *slog.Logger
}

// NewMatcher creates a matcher using the registry for normalization and
// similarity rules
func NewMatcher(registry *similarity.Registry, config MatcherConfig, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	if config.StructuralThreshold <= 0 || config.StructuralThreshold > 1 {
		config.StructuralThreshold = constants.DefaultStructuralThreshold
	}
	costModel, err := NewCostModel(config.CostModel)
	if err != nil {
		logger.Warn("falling back to the uniform cost model", slog.String("error", err.Error()))
		costModel = NewDefaultCostModel()
	}
	return &Matcher{
		config:   config,
		registry: registry,
		checker:  similarity.NewChecker(similarity.RuleSetAST, registry),
		apted:    NewAPTEDAnalyzer(costModel),
		logger:   logger,
	}
}

// Match matches two trees. The roots are always paired; both trees must
// come from the same arena.
func (m *Matcher) Match(left, right *parser.Node) (*MatchModel, error) {
	if left == nil || right == nil {
		return nil, ErrNilRoot
	}
	if left.Type != right.Type {
		return nil, fmt.Errorf("cannot match %s against %s", left.Type, right.Type)
	}
	if left.Arena() != right.Arena() {
		return nil, fmt.Errorf("trees %s and %s were not allocated from the same arena", left, right)
	}

	mm := NewMatchModel()
	mm.Add(left, right)
	m.matchChildren(mm, left, right)

	m.logger.Debug("matched trees",
		slog.String("left", left.String()),
		slog.String("right", right.String()),
		slog.Int("matches", mm.Len()),
		slog.Int("pairs", mm.Pairs()))
	return mm, nil
}

func (m *Matcher) newChecker() *similarity.Checker {
	return similarity.NewChecker(similarity.RuleSetAST, m.registry)
}

func (m *Matcher) matchChildren(mm *MatchModel, left, right *parser.Node) {
	for _, role := range childRoles(left, right) {
		lefts := left.ChildrenByRole(role)
		rights := right.ChildrenByRole(role)
		pairing := m.pair(lefts, rights)

		paired := make([]bool, len(rights))
		for i, lc := range lefts {
			j := pairing[i]
			if j < 0 {
				addOneSided(mm, lc, true)
				continue
			}
			paired[j] = true
			mm.Add(lc, rights[j])
			m.matchChildren(mm, lc, rights[j])
		}
		for j, rc := range rights {
			if !paired[j] {
				addOneSided(mm, rc, false)
			}
		}
	}
}

// childRoles returns the roles present under either node, left roles first
func childRoles(left, right *parser.Node) []string {
	var roles []string
	seen := make(map[string]bool)
	for _, n := range []*parser.Node{left, right} {
		for _, c := range n.Children {
			if !seen[c.Role] {
				seen[c.Role] = true
				roles = append(roles, c.Role)
			}
		}
	}
	return roles
}

func addOneSided(mm *MatchModel, n *parser.Node, left bool) {
	n.Walk(func(node *parser.Node) bool {
		if left {
			mm.Add(node, nil)
		} else {
			mm.Add(nil, node)
		}
		return true
	})
}

// pair returns the right index paired with each left node, or -1
func (m *Matcher) pair(lefts, rights []*parser.Node) []int {
	var result []int
	if m.config.ParallelThreshold > 0 && len(lefts) >= m.config.ParallelThreshold && len(rights) >= m.config.ParallelThreshold {
		result = FindCorrespondences(lefts, rights, m.newChecker, m.config.MaxWorkers)
	} else {
		result = m.pairSequential(lefts, rights)
	}

	taken := make([]bool, len(rights))
	for _, j := range result {
		if j >= 0 {
			taken[j] = true
		}
	}
	m.pairByIdentity(lefts, rights, result, taken)
	m.pairByStructure(lefts, rights, result, taken)
	return result
}

func (m *Matcher) pairSequential(lefts, rights []*parser.Node) []int {
	result := make([]int, len(lefts))
	taken := make([]bool, len(rights))
	for i, l := range lefts {
		result[i] = -1
		for j, r := range rights {
			if taken[j] {
				continue
			}
			if m.checker.IsSimilar(l, r).IsSimilar() {
				taken[j] = true
				result[i] = j
				break
			}
		}
	}
	return result
}

func (m *Matcher) pairByIdentity(lefts, rights []*parser.Node, result []int, taken []bool) {
	byKey := make(map[string][]int)
	for j, r := range rights {
		if taken[j] {
			continue
		}
		if key := m.identityKey(r); key != "" {
			byKey[key] = append(byKey[key], j)
		}
	}
	if len(byKey) == 0 {
		return
	}
	for i, l := range lefts {
		if result[i] >= 0 {
			continue
		}
		key := m.identityKey(l)
		candidates := byKey[key]
		if key == "" || len(candidates) == 0 {
			continue
		}
		j := candidates[0]
		byKey[key] = candidates[1:]
		result[i] = j
		taken[j] = true
	}
}

// identityKey identifies a declaration independently of its content. Nodes
// without a declaration identity return "".
func (m *Matcher) identityKey(n *parser.Node) string {
	switch {
	case n.Type == parser.NodeCompilationUnit:
		return "CompilationUnit|" + m.registry.NormalizeQualified(n.QualifiedName())
	case n.Type == parser.NodePackage:
		return "Package|" + m.registry.NormalizePackage(n.Name)
	case n.Type == parser.NodeImport:
		return "Import|" + n.Name + "|" + n.Attrs["static"]
	case n.IsClassifier():
		return string(n.Type) + "|" + m.registry.NormalizeClassifier(n.Name)
	case n.Type == parser.NodeMethod:
		return "Method|" + n.Name + parameterSignature(n)
	case n.Type == parser.NodeConstructor:
		return "Constructor|" + parameterSignature(n)
	case n.Type == parser.NodeField, n.Type == parser.NodeEnumConstant:
		return string(n.Type) + "|" + n.Name
	}
	return ""
}

func parameterSignature(n *parser.Node) string {
	params := n.ChildrenByRole(parser.RoleParam)
	types := make([]string, 0, len(params))
	for _, p := range params {
		t := p.FirstChild(parser.RoleType)
		if t == nil {
			types = append(types, "?")
			continue
		}
		types = append(types, t.Name+t.Attrs["dimensions"])
	}
	return "(" + strings.Join(types, ",") + ")"
}

func (m *Matcher) pairByStructure(lefts, rights []*parser.Node, result []int, taken []bool) {
	converter := NewTreeConverterWithConfig(true, m.registry.NormalizeClassifier)
	trees := make(map[*parser.Node]*TreeNode)
	treeOf := func(n *parser.Node) *TreeNode {
		if t, ok := trees[n]; ok {
			return t
		}
		t := converter.ConvertAST(n)
		trees[n] = t
		return t
	}

	for i, l := range lefts {
		if result[i] >= 0 || !l.IsStatement() {
			continue
		}
		best, bestScore, bestGap := -1, 0.0, 0
		for j, r := range rights {
			if taken[j] || r.Type != l.Type {
				continue
			}
			score := m.apted.ComputeSimilarity(treeOf(l), treeOf(r))
			if score < m.config.StructuralThreshold {
				continue
			}
			gap := abs(i - j)
			if best < 0 || score > bestScore || (score == bestScore && gap < bestGap) {
				best, bestScore, bestGap = j, score, gap
			}
		}
		if best >= 0 {
			result[i] = best
			taken[best] = true
			m.logger.Debug("paired statements by structure",
				slog.String("left", l.String()),
				slog.String("right", rights[best].String()),
				slog.Float64("similarity", bestScore))
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
