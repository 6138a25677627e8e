// Package walker traverses the schema graph from the requested files,
// following every edge a declaration can depend on, and resolves each
// referenced node to a TypeRef.
//
// Nodes move from unseen to in-progress (on entry) to complete (after all
// their edges are followed). An edge that reaches an in-progress node is a
// cycle: its TypeRef stays pending on a patch list and is back-filled when
// the target completes. After traversal no TypeRef may remain pending.
package walker

import (
	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/registry"
)

// State is a node's traversal state
type State int

// Traversal states
const (
	Unseen State = iota
	InProgress
	Complete
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Complete:
		return "complete"
	default:
		return "unseen"
	}
}

// EdgeKind names how one node depends on another
type EdgeKind string

// Edge kinds
const (
	EdgeNested     EdgeKind = "nested"
	EdgeField      EdgeKind = "field"
	EdgeGroup      EdgeKind = "group"
	EdgeBrand      EdgeKind = "brand"
	EdgeSuperclass EdgeKind = "superclass"
	EdgeParam      EdgeKind = "param"
	EdgeResult     EdgeKind = "result"
	EdgeConst      EdgeKind = "const"
)

// TypeRef is a resolved reference to a node
type TypeRef struct {
	Target   schema.ID
	Kind     schema.NodeKind
	File     schema.ID
	Internal string

	pending bool
}

// Pending reports whether the target has not completed yet
func (r *TypeRef) Pending() bool {
	return r.pending
}

// Edge is one followed dependency
type Edge struct {
	From schema.ID
	Via  EdgeKind
	Ref  *TypeRef
}

// Walker holds the traversal state of one generation run
type Walker struct {
	graph *schema.Graph
	reg   *registry.Registry
	log   *zap.SugaredLogger

	state   map[schema.ID]State
	order   []schema.ID
	edges   []Edge
	refs    map[schema.ID]*TypeRef
	patches map[schema.ID][]*TypeRef
}

// New creates a walker that registers every node it reaches with reg
func New(g *schema.Graph, reg *registry.Registry) *Walker {
	return &Walker{
		graph:   g,
		reg:     reg,
		log:     logger.ComponentLogger("walker"),
		state:   make(map[schema.ID]State),
		refs:    make(map[schema.ID]*TypeRef),
		patches: make(map[schema.ID][]*TypeRef),
	}
}

// Walk traverses the graph from roots and verifies the fixpoint: every
// TypeRef produced is resolved
func (w *Walker) Walk(roots ...schema.ID) error {
	for _, root := range roots {
		if _, ok := w.graph.Node(root); !ok {
			return errors.NewUnresolvedReference(uint64(root), uint64(root), "root")
		}
		if err := w.visit(root); err != nil {
			return err
		}
	}

	var pending []uint64
	for _, e := range w.edges {
		if e.Ref.pending {
			pending = append(pending, uint64(e.Ref.Target))
		}
	}
	if len(pending) > 0 {
		return errors.NewPendingReference(pending...)
	}

	w.log.Infow("walk complete",
		logger.FieldCount, len(w.order),
		logger.FieldEdges, len(w.edges),
	)
	return nil
}

// Order returns visited node IDs in preorder, without duplicates
func (w *Walker) Order() []schema.ID {
	return append([]schema.ID(nil), w.order...)
}

// Edges returns every followed edge in traversal order
func (w *Walker) Edges() []Edge {
	return append([]Edge(nil), w.edges...)
}

// Ref returns the TypeRef for a target, if any edge reached it
func (w *Walker) Ref(target schema.ID) (*TypeRef, bool) {
	r, ok := w.refs[target]
	return r, ok
}

// State returns the traversal state of id
func (w *Walker) State(id schema.ID) State {
	return w.state[id]
}

func (w *Walker) visit(id schema.ID) error {
	if w.state[id] != Unseen {
		return nil
	}
	n, ok := w.graph.Node(id)
	if !ok {
		return errors.NewUnresolvedReference(uint64(id), uint64(id), "visit")
	}

	w.state[id] = InProgress
	w.order = append(w.order, id)
	if _, err := w.reg.Register(id); err != nil {
		return err
	}

	if err := w.followEdges(n); err != nil {
		return err
	}

	w.state[id] = Complete
	return w.complete(id)
}

// complete back-fills every TypeRef waiting on id
func (w *Walker) complete(id schema.ID) error {
	waiting := w.patches[id]
	if len(waiting) == 0 {
		return nil
	}
	delete(w.patches, id)

	internal, file, err := w.resolve(id)
	if err != nil {
		return err
	}
	for _, ref := range waiting {
		ref.Internal = internal
		ref.File = file
		ref.pending = false
	}
	w.log.Debugw("patched cyclic references",
		logger.FieldNodeID, id.String(),
		logger.FieldPending, len(waiting),
	)
	return nil
}

func (w *Walker) followEdges(n *schema.Node) error {
	for _, nested := range n.NestedIDs {
		if err := w.edge(n.ID, nested, EdgeNested, ""); err != nil {
			return err
		}
	}

	switch n.Kind {
	case schema.KindStruct:
		for _, f := range n.Fields {
			if f.IsGroup() {
				if err := w.edge(n.ID, f.GroupID, EdgeGroup, schema.KindStruct); err != nil {
					return err
				}
				continue
			}
			if err := w.followType(n.ID, f.Type, EdgeField); err != nil {
				return err
			}
		}

	case schema.KindInterface:
		for _, super := range n.Superclasses {
			if err := w.edge(n.ID, super, EdgeSuperclass, schema.KindInterface); err != nil {
				return err
			}
		}
		for _, m := range n.Methods {
			for _, p := range m.Params {
				if err := w.followType(n.ID, p.Type, EdgeParam); err != nil {
					return err
				}
			}
			for _, r := range m.Results {
				if err := w.followType(n.ID, r.Type, EdgeResult); err != nil {
					return err
				}
			}
		}

	case schema.KindConst:
		if err := w.followType(n.ID, n.ConstType, EdgeConst); err != nil {
			return err
		}

	case schema.KindFile, schema.KindEnum, schema.KindAnnotation:
		// no outgoing type edges
	}
	return nil
}

// followType follows list elements, node targets and brand bindings
func (w *Walker) followType(from schema.ID, t *schema.Type, via EdgeKind) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case schema.TypeList:
		return w.followType(from, t.Element, via)

	case schema.TypeEnum, schema.TypeStruct, schema.TypeInterface:
		if err := w.edge(from, t.TypeID, via, schema.NodeKind(t.Kind)); err != nil {
			return err
		}
		for i := range t.Brand {
			if err := w.followType(from, &t.Brand[i], EdgeBrand); err != nil {
				return err
			}
		}
	}
	return nil
}

// edge records a dependency from one node on another, visiting the target
// if it is unseen. want, when set, is the node kind the edge requires.
func (w *Walker) edge(from, target schema.ID, via EdgeKind, want schema.NodeKind) error {
	n, ok := w.graph.Node(target)
	if !ok {
		return errors.NewUnresolvedReference(uint64(from), uint64(target), string(via))
	}
	if want != "" && n.Kind != want {
		return errors.NewInvalidSchema("node %s references %s as %s via %s, but it is a %s", from, target, want, via, n.Kind)
	}

	ref, ok := w.refs[target]
	if !ok {
		ref = &TypeRef{Target: target, Kind: n.Kind}
		w.refs[target] = ref
	}

	if err := w.visit(target); err != nil {
		return err
	}

	switch w.state[target] {
	case Complete:
		if ref.File == 0 {
			internal, file, err := w.resolve(target)
			if err != nil {
				return err
			}
			ref.Internal, ref.File, ref.pending = internal, file, false
		}
	case InProgress:
		// cycle: resolved when the target completes
		w.log.Debugw("deferred cyclic reference",
			logger.FieldNodeID, from.String(),
			logger.FieldTarget, target.String(),
			logger.FieldVia, string(via))
		if !ref.pending {
			ref.pending = true
			w.patches[target] = append(w.patches[target], ref)
		}
	}

	w.edges = append(w.edges, Edge{From: from, Via: via, Ref: ref})
	return nil
}

func (w *Walker) resolve(id schema.ID) (string, schema.ID, error) {
	internal, _ := w.reg.Internal(id)
	file, err := w.graph.File(id)
	if err != nil {
		return "", 0, err
	}
	return internal, file.ID, nil
}
