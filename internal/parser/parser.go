package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Parser provides Java source parsing using tree-sitter. A Parser is not
// safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// New creates a new Parser instance with the Java grammar
func New() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return &Parser{
		parser: parser,
	}
}

// ParseResult represents the result of parsing one Java file
type ParseResult struct {
	Tree       *sitter.Tree
	RootNode   *sitter.Node
	SourceCode []byte
}

// Parse parses Java source code and returns the tree-sitter tree
func (p *Parser) Parse(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source: %w", err)
	}

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		return nil, fmt.Errorf("syntax errors found in source code")
	}

	return &ParseResult{
		Tree:       tree,
		RootNode:   rootNode,
		SourceCode: source,
	}, nil
}

// ParseFile parses a Java file from a reader
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*ParseResult, error) {
	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	return p.Parse(ctx, source)
}

// ParseUnit parses source code into a CompilationUnit node allocated in the arena
func (p *Parser) ParseUnit(ctx context.Context, arena *Arena, path string, source []byte) (*Node, error) {
	result, err := p.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	builder := NewASTBuilder(arena, source, path)
	unit, err := builder.Build(result.Tree)
	if err != nil {
		return nil, err
	}
	unit.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return unit, nil
}

// Close releases the underlying tree-sitter parser
func (p *Parser) Close() {
	p.parser.Close()
}

// NewForest creates the Model root that holds one compilation unit per file
func NewForest(arena *Arena, name string) *Node {
	return arena.NewNamed(NodeModel, name)
}
