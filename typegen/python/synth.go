package python

import (
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/util"
)

// synthFile builds the declaration tree of one requested file: one block per
// top-level node in visitation order, then the _AnyPointer helper if any
// slot needed it
func (s *session) synthFile(fs *fileState) ([]Decl, error) {
	var decls []Decl
	for _, id := range s.walker.Order() {
		n, ok := s.graph.Node(id)
		if !ok || n.Kind == schema.KindFile || n.ScopeID != fs.node.ID {
			continue
		}
		block, err := s.synthTopLevel(fs, n)
		if err != nil {
			return nil, err
		}
		decls = append(decls, block...)
	}

	if fs.anyPointer {
		if err := fs.bind(anyPointerClass, fs.node.ID); err != nil {
			return nil, err
		}
		ap, err := s.synthAnyPointer(fs)
		if err != nil {
			return nil, err
		}
		decls = append(decls, ap)
	}
	return decls, nil
}

// synthTopLevel renders a node declared directly in a file. Module kinds are
// followed by their binding: `Person: _PersonStructModule`.
func (s *session) synthTopLevel(fs *fileState, n *schema.Node) ([]Decl, error) {
	decl, err := s.synthNode(fs, n)
	if err != nil || decl == nil {
		return nil, err
	}

	switch d := decl.(type) {
	case *Attr:
		if err := fs.bind(d.Name, n.ID); err != nil {
			return nil, err
		}
		return []Decl{d}, nil
	case *Class:
		if err := fs.bind(d.Name, n.ID); err != nil {
			return nil, err
		}
		binding := &Attr{Name: toPythonIdent(n.Name), Type: d.Name}
		if err := fs.bind(binding.Name, n.ID); err != nil {
			return nil, err
		}
		return []Decl{d, binding}, nil
	default:
		return []Decl{decl}, nil
	}
}

// synthNode dispatches on node kind. Annotations produce no declaration.
func (s *session) synthNode(fs *fileState, n *schema.Node) (Decl, error) {
	s.log.Debugw("Synthesizing node",
		logger.FieldNodeID, n.ID.String(),
		logger.FieldNodeKind, string(n.Kind),
		logger.FieldNodeName, n.Name)

	switch n.Kind {
	case schema.KindStruct:
		if n.IsGroup {
			return nil, errors.NewUnsupported(uint64(n.ID), string(n.Kind), "group declared outside a group field")
		}
		return s.synthStruct(fs, n)
	case schema.KindEnum:
		return s.synthEnum(n)
	case schema.KindInterface:
		return s.synthInterface(fs, n)
	case schema.KindConst:
		return s.synthConst(fs, n)
	case schema.KindAnnotation:
		return nil, nil
	default:
		return nil, errors.NewUnsupported(uint64(n.ID), string(n.Kind), "no declaration shape")
	}
}

// nestedDecls renders the nested declarations of a struct or interface in
// declaration order. Group bodies are rendered through their fields.
func (s *session) nestedDecls(fs *fileState, n *schema.Node) ([]Decl, error) {
	var decls []Decl
	for _, id := range n.NestedIDs {
		nested, ok := s.graph.Node(id)
		if !ok {
			return nil, errors.NewUnresolvedReference(uint64(n.ID), uint64(id), "nested")
		}
		if nested.IsGroup {
			continue
		}
		decl, err := s.synthNode(fs, nested)
		if err != nil {
			return nil, err
		}
		if decl != nil {
			decls = append(decls, decl)
		}
	}
	return decls, nil
}

func (s *session) synthConst(fs *fileState, n *schema.Node) (Decl, error) {
	py, err := s.pyType(fs, n.ConstType, viewReader)
	if err != nil {
		return nil, err
	}
	return &Attr{Name: toPythonIdent(n.Name), Type: py}, nil
}

// internalOf returns the registered module identifier of a module node
func (s *session) internalOf(n *schema.Node) (string, error) {
	internal, ok := s.reg.Internal(n.ID)
	if !ok || internal == "" {
		return "", errors.AssertionFailedf("node %s was never registered", n.ID)
	}
	return internal, nil
}

// className is the last segment of an internal identifier
func className(internal string) string {
	if i := strings.LastIndex(internal, "."); i >= 0 {
		return internal[i+1:]
	}
	return internal
}

// pyString renders s as a double-quoted Python string literal
func pyString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// literal renders a Literal[...] type over the given strings, in order
func literal(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = pyString(v)
	}
	return "Literal[" + strings.Join(quoted, ", ") + "]"
}

func docLines(doc string) []string {
	return util.DocLines(doc)
}
