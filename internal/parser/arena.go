package parser

import (
	"maps"
	"sync"
)

// Arena allocates nodes and assigns them stable integer identities.
// The left and right forests of one diff run share an arena so that ids are
// unique across the whole build. Allocation is safe for concurrent use, so
// files can be parsed in parallel into one arena.
type Arena struct {
	mu    sync.RWMutex
	nodes []*Node
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{nodes: make([]*Node, 0, 256)}
}

// New allocates a node of the given type
func (a *Arena) New(nodeType NodeType) *Node {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := &Node{
		ID:    NodeID(len(a.nodes)),
		Type:  nodeType,
		arena: a,
	}
	a.nodes = append(a.nodes, n)
	return n
}

// NewNamed allocates a node with a name
func (a *Arena) NewNamed(nodeType NodeType, name string) *Node {
	n := a.New(nodeType)
	n.Name = name
	return n
}

// Get returns the node with the given id
func (a *Arena) Get(id NodeID) *Node {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// Len returns the number of allocated nodes
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

// Copy creates an independent deep copy of the subtree rooted at n. The copy
// receives fresh ids and has no parent. References to nodes inside the copied
// subtree are redirected to their copies; references leaving the subtree keep
// pointing at the original targets.
func (a *Arena) Copy(n *Node) *Node {
	if n == nil {
		return nil
	}
	mapping := make(map[*Node]*Node)
	root := a.copyNode(n, mapping)
	for orig, cp := range mapping {
		for key, ref := range orig.Refs {
			if ref.target != nil {
				if inner, ok := mapping[ref.target]; ok {
					cp.Refs[key] = Resolved(inner)
				}
			}
		}
	}
	return root
}

func (a *Arena) copyNode(n *Node, mapping map[*Node]*Node) *Node {
	copied := a.New(n.Type)
	copied.Name = n.Name
	copied.Value = n.Value
	copied.Op = n.Op
	copied.Role = n.Role
	copied.Location = n.Location
	copied.Modifiers = append([]string(nil), n.Modifiers...)
	if n.Attrs != nil {
		copied.Attrs = maps.Clone(n.Attrs)
	}
	if n.Refs != nil {
		copied.Refs = maps.Clone(n.Refs)
	}
	mapping[n] = copied

	for _, child := range n.Children {
		cc := a.copyNode(child, mapping)
		cc.parent = copied
		copied.Children = append(copied.Children, cc)
	}
	return copied
}

// Arena returns the arena that allocated the node
func (n *Node) Arena() *Arena {
	return n.arena
}
