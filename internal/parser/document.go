package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeDocument is the serialized form of an AST node. YAML and JSON documents
// share the same shape.
//
// References are written as strings: "@key" points at the node carrying that
// key in the same document, anything else is a qualified path and becomes an
// unresolved proxy.
type NodeDocument struct {
	Key       string            `yaml:"key,omitempty" json:"key,omitempty"`
	Type      NodeType          `yaml:"type" json:"type"`
	Role      string            `yaml:"role,omitempty" json:"role,omitempty"`
	Name      string            `yaml:"name,omitempty" json:"name,omitempty"`
	Value     string            `yaml:"value,omitempty" json:"value,omitempty"`
	Op        string            `yaml:"op,omitempty" json:"op,omitempty"`
	Modifiers []string          `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Attrs     map[string]string `yaml:"attrs,omitempty" json:"attrs,omitempty"`
	Refs      map[string]string `yaml:"refs,omitempty" json:"refs,omitempty"`
	Location  *Location         `yaml:"location,omitempty" json:"location,omitempty"`
	Children  []NodeDocument    `yaml:"children,omitempty" json:"children,omitempty"`
}

// DocumentLoader builds AST nodes from YAML or JSON documents
type DocumentLoader struct {
	arena *Arena
}

// NewDocumentLoader creates a loader allocating into the given arena
func NewDocumentLoader(arena *Arena) *DocumentLoader {
	return &DocumentLoader{arena: arena}
}

// LoadFile reads a document from disk. The file name is recorded as the
// location of nodes that do not declare one.
func (l *DocumentLoader) LoadFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open AST document %s: %w", path, err)
	}
	defer f.Close()

	root, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load AST document %s: %w", path, err)
	}
	root.Walk(func(n *Node) bool {
		if n.Location.File == "" {
			n.Location.File = path
		}
		return true
	})
	return root, nil
}

// Load decodes a single document
func (l *DocumentLoader) Load(r io.Reader) (*Node, error) {
	var doc NodeDocument
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return l.Build(&doc)
}

// Build converts a decoded document into nodes
func (l *DocumentLoader) Build(doc *NodeDocument) (*Node, error) {
	keyed := make(map[string]*Node)
	pending := make(map[*Node]map[string]string)

	root, err := l.build(doc, keyed, pending)
	if err != nil {
		return nil, err
	}

	for node, refs := range pending {
		for attr, value := range refs {
			if key, ok := strings.CutPrefix(value, "@"); ok {
				target, found := keyed[key]
				if !found {
					return nil, fmt.Errorf("node %s: reference %q points at unknown key %q", node, attr, key)
				}
				node.SetRef(attr, Resolved(target))
				continue
			}
			node.SetRef(attr, Unresolved(value))
		}
	}
	return root, nil
}

func (l *DocumentLoader) build(doc *NodeDocument, keyed map[string]*Node, pending map[*Node]map[string]string) (*Node, error) {
	if doc.Type == "" {
		return nil, fmt.Errorf("node without type (name=%q, key=%q)", doc.Name, doc.Key)
	}
	n := l.arena.New(doc.Type)
	n.Role = doc.Role
	n.Name = doc.Name
	n.Value = doc.Value
	n.Op = doc.Op
	n.Modifiers = doc.Modifiers
	for k, v := range doc.Attrs {
		n.SetAttr(k, v)
	}
	if doc.Location != nil {
		n.Location = *doc.Location
	}
	if doc.Key != "" {
		if _, dup := keyed[doc.Key]; dup {
			return nil, fmt.Errorf("duplicate node key %q", doc.Key)
		}
		keyed[doc.Key] = n
	}
	if len(doc.Refs) > 0 {
		pending[n] = doc.Refs
	}

	for i := range doc.Children {
		child, err := l.build(&doc.Children[i], keyed, pending)
		if err != nil {
			return nil, err
		}
		n.AddChild(doc.Children[i].Role, child)
	}
	return n, nil
}

// ToDocument converts a subtree back into its document form. Resolved
// references are written as qualified paths.
func ToDocument(n *Node) NodeDocument {
	doc := NodeDocument{
		Type:      n.Type,
		Role:      n.Role,
		Name:      n.Name,
		Value:     n.Value,
		Op:        n.Op,
		Modifiers: n.Modifiers,
		Attrs:     n.Attrs,
	}
	if n.Location != (Location{}) {
		loc := n.Location
		doc.Location = &loc
	}
	if len(n.Refs) > 0 {
		doc.Refs = make(map[string]string, len(n.Refs))
		for k, r := range n.Refs {
			doc.Refs[k] = r.Path()
		}
	}
	for _, c := range n.Children {
		doc.Children = append(doc.Children, ToDocument(c))
	}
	return doc
}
