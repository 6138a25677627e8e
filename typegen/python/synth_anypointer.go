package python

import (
	"sort"

	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/registry"
)

// castTarget is a struct or interface declared in the current file that an
// _AnyPointer can be cast to
type castTarget struct {
	alias    string
	internal string
	kind     schema.NodeKind
}

// synthAnyPointer renders the per-file _AnyPointer helper. Its cast overloads
// cover exactly the structs and interfaces declared in this file, sorted by
// public alias, plus an untyped fallback per cast.
func (s *session) synthAnyPointer(fs *fileState) (*Class, error) {
	targets, err := s.castTargets(fs)
	if err != nil {
		return nil, err
	}

	cls := &Class{Name: anyPointerClass, Bases: []string{"_DynamicObjectReader"}}

	var structs, interfaces []Decl
	for _, t := range targets {
		switch t.kind {
		case schema.KindStruct:
			structs = append(structs, overloaded(&Def{
				Name:    "as_struct",
				Params:  []Param{{Name: "schema", Type: t.internal}},
				Returns: t.internal + ".Reader",
			}))
		case schema.KindInterface:
			interfaces = append(interfaces, overloaded(&Def{
				Name:    "as_interface",
				Params:  []Param{{Name: "schema", Type: t.internal}},
				Returns: t.internal + ".Client",
			}))
		}
	}

	cls.Body = append(cls.Body, castSet("as_struct", structs)...)
	cls.Body = append(cls.Body, castSet("as_interface", interfaces)...)
	cls.Body = append(cls.Body,
		&Def{Name: "as_list", Params: []Param{{Name: "schema", Type: "Any"}}, Returns: "Sequence[Any]"},
		&Def{Name: "as_text", Returns: "str"},
	)
	return cls, nil
}

// castSet appends the fallback to a list of typed overloads. A lone fallback
// is a plain method.
func castSet(name string, typed []Decl) []Decl {
	fallback := &Def{Name: name, Params: []Param{{Name: "schema", Type: "Any"}}, Returns: "Any"}
	if len(typed) == 0 {
		return []Decl{fallback}
	}
	return append(typed, overloaded(fallback))
}

func (s *session) castTargets(fs *fileState) ([]castTarget, error) {
	var targets []castTarget
	for _, id := range s.walker.Order() {
		n, ok := s.graph.Node(id)
		if !ok {
			continue
		}
		var role registry.Role
		switch {
		case n.Kind == schema.KindStruct && !n.IsGroup:
			role = registry.RoleReader
		case n.Kind == schema.KindInterface:
			role = registry.RoleClient
		default:
			continue
		}
		if !s.declaredIn(id, fs.node) {
			continue
		}
		internal, err := s.internalOf(n)
		if err != nil {
			return nil, err
		}
		alias, err := s.reg.Alias(registry.Subject{Node: id}, role)
		if err != nil {
			return nil, err
		}
		targets = append(targets, castTarget{alias: alias, internal: internal, kind: n.Kind})
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].alias < targets[j].alias })
	return targets, nil
}
