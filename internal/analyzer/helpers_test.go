package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/variscan/internal/parser"
)

func parseJava(t *testing.T, arena *parser.Arena, path, source string) *parser.Node {
	t.Helper()
	p := parser.New()
	defer p.Close()
	unit, err := p.ParseUnit(context.Background(), arena, path, []byte(source))
	require.NoError(t, err)
	return unit
}

func forest(t *testing.T, arena *parser.Arena, name string, sources map[string]string, order ...string) *parser.Node {
	t.Helper()
	root := parser.NewForest(arena, name)
	for _, path := range order {
		root.AddChild(parser.RoleUnit, parseJava(t, arena, path, sources[path]))
	}
	return root
}

func loadDoc(t *testing.T, arena *parser.Arena, doc string) *parser.Node {
	t.Helper()
	n, err := parser.NewDocumentLoader(arena).Load(strings.NewReader(doc))
	require.NoError(t, err)
	return n
}

func findNamed(root *parser.Node, nodeType parser.NodeType, name string) *parser.Node {
	for _, n := range root.FindByType(nodeType) {
		if n.Name == name {
			return n
		}
	}
	return nil
}
