package python

import (
	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/schema"
)

// synthEnum renders an enum module: the closed Value literal in declared
// order followed by one int attribute per enumerant
func (s *session) synthEnum(n *schema.Node) (*Class, error) {
	if len(n.Enumerants) == 0 {
		return nil, errors.NewUnsupported(uint64(n.ID), string(n.Kind), "enum without enumerants")
	}
	internal, err := s.internalOf(n)
	if err != nil {
		return nil, err
	}
	s.reg.MarkDeclared(n.ID)

	cls := &Class{
		Name:  className(internal),
		Bases: []string{"_EnumModule"},
		Doc:   docLines(n.Doc),
	}
	cls.Body = append(cls.Body, &TypeAliasDecl{Name: "Value", Target: literal(n.Enumerants)})
	for _, e := range n.Enumerants {
		cls.Body = append(cls.Body, &Attr{Name: toPythonIdent(e), Type: "int"})
	}
	return cls, nil
}
