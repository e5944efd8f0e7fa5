// Package parser provides the AST model used by the variability analysis and
// the front ends that populate it.
//
// Nodes live in an Arena, which hands out stable NodeIDs and supports deep
// copies. Children are owned by their parent; references (type usages,
// identifier bindings, imports) are non-owning and may be unresolved proxies
// carrying a qualified path until ResolveAll or Resolve binds them.
//
// Two front ends are provided: a tree-sitter based Java parser and a loader
// for YAML or JSON AST documents.
//
// Basic usage:
//
//	arena := parser.NewArena()
//	p := parser.New()
//	defer p.Close()
//	unit, err := p.ParseUnit(ctx, arena, "Foo.java", source)
//	if err != nil {
//	    // Handle parsing error
//	}
package parser
