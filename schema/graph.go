// Package schema holds the reflective IDL schema graph that stubs are
// generated from, and decodes it from JSON or YAML schema documents.
//
// A Graph is an arena of nodes keyed by ID. Cross-references between nodes
// (nested declarations, field types, superclasses) are IDs, never pointers,
// so cyclic and cross-file schemas need no special representation.
package schema

import (
	"strings"

	"github.com/teranos/stubgen/errors"
)

// Graph is a validated, read-only schema graph
type Graph struct {
	nodes     map[ID]*Node
	order     []ID
	requested []ID
}

// NewGraph builds a graph from nodes and the IDs of the files to generate.
// Missing local names are derived from display names; the result is
// validated before it is returned.
func NewGraph(nodes []*Node, requested []ID) (*Graph, error) {
	g := &Graph{
		nodes:     make(map[ID]*Node, len(nodes)),
		order:     make([]ID, 0, len(nodes)),
		requested: append([]ID(nil), requested...),
	}

	for i, n := range nodes {
		if n == nil {
			return nil, errors.NewInvalidSchema("node #%d is empty", i)
		}
		if n.ID == 0 {
			return nil, errors.NewInvalidSchema("node #%d (%q) has no id", i, n.DisplayName)
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, errors.WithHint(
				errors.NewInvalidSchema("duplicate node id %s", n.ID),
				"every node in the schema document must have a unique id",
			)
		}
		deriveNames(n)
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// deriveNames fills Name from DisplayName (and the reverse) when the
// document only carries one of them
func deriveNames(n *Node) {
	if n.Name == "" {
		n.Name = localName(n.DisplayName)
		if n.Kind == KindFile {
			n.Name = n.DisplayName
		}
	}
	if n.DisplayName == "" {
		n.DisplayName = n.Name
	}
}

// localName returns the last segment of a display name:
// "addressbook.capnp:Person.PhoneNumber" -> "PhoneNumber"
func localName(display string) string {
	if i := strings.LastIndex(display, ":"); i >= 0 {
		display = display[i+1:]
	}
	if i := strings.LastIndex(display, "."); i >= 0 {
		display = display[i+1:]
	}
	return display
}

// Node returns the node with the given ID
func (g *Graph) Node(id ID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes in the graph
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns every node in document order
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// RequestedFiles returns the IDs of the files to generate stubs for
func (g *Graph) RequestedFiles() []ID {
	return append([]ID(nil), g.requested...)
}

// File returns the file node that owns id
func (g *Graph) File(id ID) (*Node, error) {
	cur, err := g.lookup(id, id)
	if err != nil {
		return nil, err
	}
	for steps := 0; cur.Kind != KindFile; steps++ {
		if steps > len(g.nodes) {
			return nil, errors.NewInvalidSchema("scope chain of %s does not terminate", id)
		}
		if cur, err = g.lookup(cur.ID, cur.ScopeID); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Ancestors returns the non-file scopes enclosing id, outermost first. The
// node itself is not included.
func (g *Graph) Ancestors(id ID) ([]*Node, error) {
	n, err := g.lookup(id, id)
	if err != nil {
		return nil, err
	}

	var chain []*Node
	for steps := 0; n.Kind != KindFile; steps++ {
		if steps > len(g.nodes) {
			return nil, errors.NewInvalidSchema("scope chain of %s does not terminate", id)
		}
		parent, err := g.lookup(n.ID, n.ScopeID)
		if err != nil {
			return nil, err
		}
		if parent.Kind != KindFile {
			chain = append(chain, parent)
		}
		n = parent
	}

	// collected innermost first
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// GroupField returns the field of the enclosing struct that holds the group
// node id. ok is false when id is not a group.
func (g *Graph) GroupField(id ID) (Field, bool) {
	n, ok := g.nodes[id]
	if !ok || !n.IsGroup {
		return Field{}, false
	}
	parent, ok := g.nodes[n.ScopeID]
	if !ok {
		return Field{}, false
	}
	for _, f := range parent.Fields {
		if f.Kind == FieldGroup && f.GroupID == id {
			return f, true
		}
	}
	return Field{}, false
}

func (g *Graph) lookup(from, id ID) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, errors.NewUnresolvedReference(uint64(from), uint64(id), "scope")
	}
	return n, nil
}
