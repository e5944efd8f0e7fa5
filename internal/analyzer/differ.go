package analyzer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ludo-technologies/variscan/internal/parser"
)

// ErrNilMatchModel is returned when differences are requested without a match
var ErrNilMatchModel = errors.New("match model is missing")

// DifferenceKind classifies an elementary change
type DifferenceKind string

const (
	DifferenceAdd    DifferenceKind = "ADD"
	DifferenceDelete DifferenceKind = "DELETE"
	DifferenceChange DifferenceKind = "CHANGE"
	DifferenceMove   DifferenceKind = "MOVE"
)

// Subject is the node category a difference affects
type Subject string

const (
	SubjectCompilationUnit Subject = "CompilationUnit"
	SubjectPackage         Subject = "Package"
	SubjectImport          Subject = "Import"
	SubjectClassifier      Subject = "Classifier"
	SubjectMethod          Subject = "Method"
	SubjectField           Subject = "Field"
	SubjectEnumConstant    Subject = "EnumConstant"
	SubjectStatement       Subject = "Statement"
)

// SubjectOf returns the subject for a diff unit node
func SubjectOf(n *parser.Node) (Subject, bool) {
	if n == nil {
		return "", false
	}
	switch {
	case n.Type == parser.NodeCompilationUnit:
		return SubjectCompilationUnit, true
	case n.Type == parser.NodePackage:
		return SubjectPackage, true
	case n.Type == parser.NodeImport:
		return SubjectImport, true
	case n.IsClassifier():
		return SubjectClassifier, true
	case n.Type == parser.NodeMethod, n.Type == parser.NodeConstructor:
		return SubjectMethod, true
	case n.Type == parser.NodeField:
		return SubjectField, true
	case n.Type == parser.NodeEnumConstant:
		return SubjectEnumConstant, true
	case n.IsStatement():
		return SubjectStatement, true
	}
	return "", false
}

// Difference is an elementary change on one node. Node is the added node
// for ADD, the deleted node for DELETE and the right side otherwise; both
// sides of a CHANGE or MOVE are available through Match.
type Difference struct {
	Kind    DifferenceKind
	Subject Subject
	Node    *parser.Node
	Match   *Match
}

// Left returns the left side of the difference, if any
func (d *Difference) Left() *parser.Node {
	return d.Match.Side(true)
}

// Right returns the right side of the difference, if any
func (d *Difference) Right() *parser.Node {
	return d.Match.Side(false)
}

// String returns a printable form of the difference
func (d *Difference) String() string {
	return fmt.Sprintf("%s %s %s", d.Kind, d.Subject, d.Node)
}

// DifferOptions configures difference extraction
type DifferOptions struct {
	// EmitMoves reports statements whose order changed among their siblings
	EmitMoves bool
}

// Differ derives the difference set of a match model
type Differ struct {
	options DifferOptions
	logger  *slog.Logger
}

// NewDiffer creates a new differ
func NewDiffer(options DifferOptions, logger *slog.Logger) *Differ {
	if logger == nil {
		logger = slog.Default()
	}
	return &Differ{options: options, logger: logger}
}

// Diff walks the match model from its root pair and returns the differences
// in document order. Only diff units are reported: an unmatched unit hides
// all of its descendants, and everything below a unit that is not a unit
// itself counts as content of that unit.
func (d *Differ) Diff(mm *MatchModel) ([]*Difference, error) {
	if mm == nil || mm.Len() == 0 {
		return nil, ErrNilMatchModel
	}
	root := mm.Matches()[0]
	if !root.IsPair() {
		return nil, fmt.Errorf("match model root is one-sided: %s", root.Prefer(true))
	}

	var diffs []*Difference
	d.diffPair(mm, root, &diffs)

	d.logger.Debug("extracted differences", slog.Int("count", len(diffs)))
	return diffs, nil
}

func (d *Differ) diffPair(mm *MatchModel, m *Match, diffs *[]*Difference) {
	left, right := m.Left, m.Right
	if left.IsDiffUnit() && parser.LocalFingerprint(left) != parser.LocalFingerprint(right) {
		d.emit(diffs, DifferenceChange, right, m)
	}

	var paired []*Match
	for _, c := range left.Children {
		if !c.IsDiffUnit() {
			continue
		}
		cm := mm.ForNode(c)
		if cm.IsPair() && cm.Left == c {
			paired = append(paired, cm)
			d.diffPair(mm, cm, diffs)
			continue
		}
		d.emit(diffs, DifferenceDelete, c, cm)
	}
	for _, c := range right.Children {
		if !c.IsDiffUnit() {
			continue
		}
		cm := mm.ForNode(c)
		if cm.IsPair() && cm.Right == c {
			continue
		}
		d.emit(diffs, DifferenceAdd, c, cm)
	}

	if d.options.EmitMoves {
		for _, moved := range movedStatements(paired, right) {
			d.emit(diffs, DifferenceMove, moved.Right, moved)
		}
	}
}

func (d *Differ) emit(diffs *[]*Difference, kind DifferenceKind, n *parser.Node, m *Match) {
	subject, ok := SubjectOf(n)
	if !ok {
		return
	}
	if m == nil {
		switch kind {
		case DifferenceAdd:
			m = &Match{Right: n}
		case DifferenceDelete:
			m = &Match{Left: n}
		}
	}
	*diffs = append(*diffs, &Difference{Kind: kind, Subject: subject, Node: n, Match: m})
}

// movedStatements returns the paired statements that do not belong to the
// longest run keeping their relative order on the right side
func movedStatements(paired []*Match, right *parser.Node) []*Match {
	var stmts []*Match
	for _, m := range paired {
		if m.Left.IsStatement() {
			stmts = append(stmts, m)
		}
	}
	if len(stmts) < 2 {
		return nil
	}

	index := make(map[*parser.Node]int, len(right.Children))
	for i, c := range right.Children {
		index[c] = i
	}
	seq := make([]int, len(stmts))
	for i, m := range stmts {
		seq[i] = index[m.Right]
	}

	keep := longestIncreasing(seq)
	var moved []*Match
	for i, m := range stmts {
		if !keep[i] {
			moved = append(moved, m)
		}
	}
	return moved
}

// longestIncreasing marks the members of one longest strictly increasing
// subsequence of seq
func longestIncreasing(seq []int) []bool {
	n := len(seq)
	length := make([]int, n)
	prev := make([]int, n)
	best := -1
	for i := range seq {
		length[i], prev[i] = 1, -1
		for j := 0; j < i; j++ {
			if seq[j] < seq[i] && length[j]+1 > length[i] {
				length[i], prev[i] = length[j]+1, j
			}
		}
		if best < 0 || length[i] > length[best] {
			best = i
		}
	}

	keep := make([]bool, n)
	for i := best; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}
