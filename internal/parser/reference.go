package parser

import "fmt"

// Reference is a non-owning pointer to another node. It is either resolved
// (points at a node) or a proxy carrying the symbolic path of its target.
type Reference struct {
	target *Node
	path   string
}

// Resolved creates a reference pointing at a node
func Resolved(target *Node) Reference {
	return Reference{target: target}
}

// Unresolved creates a proxy reference identified by a qualified path
func Unresolved(path string) Reference {
	return Reference{path: path}
}

// IsProxy reports whether the reference still needs resolution
func (r Reference) IsProxy() bool {
	return r.target == nil && r.path != ""
}

// IsZero reports whether the reference is empty
func (r Reference) IsZero() bool {
	return r.target == nil && r.path == ""
}

// Target returns the referenced node, nil for proxies
func (r Reference) Target() *Node {
	return r.target
}

// Path returns the symbolic path of the reference. Resolved references
// report the qualified name of their target.
func (r Reference) Path() string {
	if r.target != nil {
		return r.target.QualifiedName()
	}
	return r.path
}

// String returns a printable form of the reference
func (r Reference) String() string {
	if r.IsProxy() {
		return fmt.Sprintf("proxy(%s)", r.path)
	}
	return r.Path()
}

// Resolve resolves a reference against the tree containing context. Resolved
// references return their target unchanged. A proxy resolves to the first
// classifier or package in that tree whose qualified name equals the proxy
// path, then to a compilation unit of that name; nil is returned when nothing
// matches.
func Resolve(ref Reference, context *Node) *Node {
	if ref.target != nil {
		return ref.target
	}
	if ref.path == "" || context == nil {
		return nil
	}
	var found, unit *Node
	context.Root().Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		switch {
		case n.IsClassifier() || n.Type == NodePackage:
			if n.QualifiedName() == ref.path {
				found = n
				return false
			}
		case n.Type == NodeCompilationUnit:
			if unit == nil && n.QualifiedName() == ref.path {
				unit = n
			}
		case n.IsMember() || n.IsStatement():
			// declarations below members are not addressable by path
			return false
		}
		return true
	})
	if found == nil {
		return unit
	}
	return found
}

// ResolveAll replaces every proxy in the subtree that can be resolved within
// the subtree's own tree. It returns the number of proxies left unresolved.
func ResolveAll(root *Node) int {
	unresolved := 0
	index := make(map[string]*Node)
	root.Walk(func(n *Node) bool {
		if n.IsClassifier() || n.Type == NodePackage {
			qn := n.QualifiedName()
			if _, exists := index[qn]; !exists {
				index[qn] = n
			}
		}
		return true
	})
	root.Walk(func(n *Node) bool {
		for key, ref := range n.Refs {
			if !ref.IsProxy() {
				continue
			}
			if target, ok := index[ref.path]; ok {
				n.Refs[key] = Resolved(target)
			} else {
				unresolved++
			}
		}
		return true
	})
	return unresolved
}
