package python

import (
	"sort"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/schema"
)

// member is one field as seen from a struct's views, after anonymous groups
// have been flattened into their parent
type member struct {
	field schema.Field
	owner *schema.Node
	group *schema.Node // named group body, nil for slots
}

func (m member) ident() string {
	return toPythonIdent(m.field.Name)
}

// members flattens the fields of n. Membership is decided by the owning
// node, so fields of sibling groups never leak into each other.
func (s *session) members(n *schema.Node) ([]member, error) {
	var out []member
	for _, f := range n.Fields {
		if !f.IsGroup() {
			out = append(out, member{field: f, owner: n})
			continue
		}
		g, ok := s.graph.Node(f.GroupID)
		if !ok {
			return nil, errors.NewUnresolvedReference(uint64(n.ID), uint64(f.GroupID), "group")
		}
		if !f.IsAnonymous() {
			out = append(out, member{field: f, owner: n, group: g})
			continue
		}
		if g.HasUnion() || f.Union > 0 {
			return nil, errors.NewUnsupported(uint64(g.ID), string(g.Kind), "anonymous group with a union")
		}
		inner, err := s.members(g)
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}

	seen := make(map[string]schema.ID, len(out))
	for _, m := range out {
		if prev, ok := seen[m.field.Name]; ok {
			return nil, errors.NewNameCollision(m.field.Name, uint64(prev), uint64(m.owner.ID))
		}
		seen[m.field.Name] = m.owner.ID
	}
	return out, nil
}

// memberType renders a member through view v
func (s *session) memberType(fs *fileState, m member, v view) (string, error) {
	if m.group == nil {
		return s.pyType(fs, m.field.Type, v)
	}
	internal, err := s.internalOf(m.group)
	if err != nil {
		return "", err
	}
	switch v {
	case viewReader:
		return internal + ".Reader", nil
	case viewBuilder:
		return internal + ".Builder", nil
	default:
		return internal + ".Dict", nil
	}
}

// synthStruct renders a struct module, or a group module when n is a group
// body. Group modules carry views only.
func (s *session) synthStruct(fs *fileState, n *schema.Node) (*Class, error) {
	internal, err := s.internalOf(n)
	if err != nil {
		return nil, err
	}
	s.reg.MarkDeclared(n.ID)

	members, err := s.members(n)
	if err != nil {
		return nil, err
	}

	cls := &Class{Name: className(internal), Doc: docLines(n.Doc)}
	if !n.IsGroup {
		cls.Bases = []string{"_StructModule"}
		nested, err := s.nestedDecls(fs, n)
		if err != nil {
			return nil, err
		}
		cls.Body = append(cls.Body, nested...)
	}

	for _, m := range members {
		if m.group == nil {
			continue
		}
		group, err := s.synthStruct(fs, m.group)
		if err != nil {
			return nil, err
		}
		cls.Body = append(cls.Body, group)
	}

	dict, err := s.structDict(fs, members)
	if err != nil {
		return nil, err
	}
	reader, err := s.structReader(fs, n, internal, members)
	if err != nil {
		return nil, err
	}
	builder, err := s.structBuilder(fs, n, internal, members)
	if err != nil {
		return nil, err
	}
	cls.Body = append(cls.Body, dict, reader, builder)

	if n.IsGroup {
		return cls, nil
	}

	newMessage, err := s.newMessage(fs, internal, members)
	if err != nil {
		return nil, err
	}
	limits := []Param{
		{Name: "traversal_limit_in_words", Type: "int | None", Default: "None"},
		{Name: "nesting_limit", Type: "int | None", Default: "None"},
	}
	cls.Body = append(cls.Body,
		newMessage,
		&Def{
			Name:    "from_bytes",
			Params:  append([]Param{{Name: "buf", Type: "bytes"}}, limits...),
			Returns: "AbstractContextManager[" + internal + ".Reader]",
		},
		&Def{
			Name:    "read",
			Params:  append([]Param{{Name: "file", Type: "BinaryIO"}}, limits...),
			Returns: internal + ".Reader",
		},
	)
	return cls, nil
}

func (s *session) structDict(fs *fileState, members []member) (*Class, error) {
	dict := &Class{Name: "Dict", Bases: []string{"TypedDict", "total=False"}}
	for _, m := range members {
		py, err := s.memberType(fs, m, viewDict)
		if err != nil {
			return nil, err
		}
		dict.Body = append(dict.Body, &Attr{Name: m.ident(), Type: py})
	}
	return dict, nil
}

func (s *session) structReader(fs *fileState, n *schema.Node, internal string, members []member) (*Class, error) {
	reader := &Class{Name: "Reader", Bases: []string{"_DynamicStructReader"}}
	for _, m := range members {
		py, err := s.memberType(fs, m, viewReader)
		if err != nil {
			return nil, err
		}
		reader.Body = append(reader.Body, property(m.ident(), py, docLines(m.field.Doc)))
	}
	if which := whichDef(n); which != nil {
		reader.Body = append(reader.Body, which)
	}
	reader.Body = append(reader.Body,
		&Def{Name: "as_builder", Returns: internal + ".Builder"},
		&Def{Name: "to_dict", Returns: internal + ".Dict"},
	)
	return reader, nil
}

func (s *session) structBuilder(fs *fileState, n *schema.Node, internal string, members []member) (*Class, error) {
	builder := &Class{Name: "Builder", Bases: []string{"_DynamicStructBuilder"}}
	for _, m := range members {
		py, err := s.memberType(fs, m, viewBuilder)
		if err != nil {
			return nil, err
		}
		builder.Body = append(builder.Body, property(m.ident(), py, nil))
		if m.group != nil {
			continue
		}
		set, err := s.memberType(fs, m, viewSetter)
		if err != nil {
			return nil, err
		}
		builder.Body = append(builder.Body, setter(m.ident(), set))
	}
	if which := whichDef(n); which != nil {
		builder.Body = append(builder.Body, which)
	}

	inits, err := s.initOverloads(fs, members)
	if err != nil {
		return nil, err
	}
	builder.Body = append(builder.Body, inits...)

	builder.Body = append(builder.Body,
		&Def{Name: "as_reader", Returns: internal + ".Reader"},
		&Def{Name: "to_dict", Returns: internal + ".Dict"},
	)
	if !n.IsGroup {
		builder.Body = append(builder.Body, &Def{Name: "to_bytes", Returns: "bytes"})
	}
	return builder, nil
}

// whichDef returns the union discriminant accessor, labels in ordinal order
func whichDef(n *schema.Node) *Def {
	if !n.HasUnion() {
		return nil
	}
	fields := n.UnionFields()
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f.Name
	}
	return &Def{Name: "which", Returns: literal(labels)}
}

// initOverloads returns one typed init overload per struct, group or list
// member sorted by field name, then the untyped fallback
func (s *session) initOverloads(fs *fileState, members []member) ([]Decl, error) {
	type initTarget struct {
		name string
		def  *Def
	}
	var targets []initTarget
	for _, m := range members {
		selector := Param{Name: "field", Type: literal([]string{m.field.Name})}
		switch {
		case m.group != nil, m.field.Type.Kind == schema.TypeStruct:
			py, err := s.memberType(fs, m, viewBuilder)
			if err != nil {
				return nil, err
			}
			targets = append(targets, initTarget{m.field.Name, &Def{
				Name:    "init",
				Params:  []Param{selector},
				Returns: py,
			}})
		case m.field.Type.Kind == schema.TypeList:
			py, err := s.memberType(fs, m, viewBuilder)
			if err != nil {
				return nil, err
			}
			targets = append(targets, initTarget{m.field.Name, &Def{
				Name:    "init",
				Params:  []Param{selector, {Name: "size", Type: "int"}},
				Returns: py,
			}})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].name < targets[j].name })

	fallback := &Def{
		Name: "init",
		Params: []Param{
			{Name: "field", Type: "str"},
			{Name: "size", Type: "int | None", Default: "None"},
		},
		Returns: "Any",
	}
	if len(targets) == 0 {
		return []Decl{fallback}, nil
	}

	decls := make([]Decl, 0, len(targets)+1)
	for _, t := range targets {
		decls = append(decls, overloaded(t.def))
	}
	return append(decls, overloaded(fallback)), nil
}

// newMessage renders the keyword-only constructor of a struct module
func (s *session) newMessage(fs *fileState, internal string, members []member) (*Def, error) {
	var params []Param
	if len(members) > 0 {
		params = append(params, Param{Name: "*"})
	}
	for _, m := range members {
		py, err := s.memberType(fs, m, viewSetter)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: m.ident(), Type: optional(py), Default: "None"})
	}
	params = append(params, Param{Name: "**kwargs", Type: "Any"})
	return &Def{Name: "new_message", Params: params, Returns: internal + ".Builder"}, nil
}
