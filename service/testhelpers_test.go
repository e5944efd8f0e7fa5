package service

import (
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/variscan/domain"
)

const (
	baseSource    = "package p;\n\npublic class A {\n    private int x;\n}\n"
	derivedSource = "package p;\n\npublic class A {\n    private int x;\n    public int y;\n}\n"
)

// createVariants writes a base and a derived variant of one class and
// returns their roots
func createVariants(t *testing.T, left, right string) (string, string) {
	t.Helper()
	root := t.TempDir()
	leftRoot := filepath.Join(root, "left")
	rightRoot := filepath.Join(root, "right")
	createTestFile(t, leftRoot, "src/p/A.java", left)
	createTestFile(t, rightRoot, "src/p/A.java", right)
	return leftRoot, rightRoot
}

func newTestRequest(left, right string) *domain.DiffRequest {
	req := domain.DefaultDiffRequest()
	req.LeftPath = left
	req.RightPath = right
	req.MaxWorkers = 2
	return req
}
