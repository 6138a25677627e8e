package python

import (
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/registry"
	"github.com/teranos/stubgen/typegen/util"
)

// requestAliases declares the alias subjects of every file the walk reached.
// A file contributes all of its subjects in its own declaration order, not
// only the ones reached, so its aliases come out the same whichever files
// share the run.
func (s *session) requestAliases() error {
	for _, file := range s.reachedFiles() {
		for _, nested := range file.NestedIDs {
			n, ok := s.graph.Node(nested)
			if !ok || n.Kind == schema.KindAnnotation {
				continue
			}
			s.reg.Reserve(file.ID, toPythonIdent(n.Name), n.ID)
		}

		for order, id := range s.declarationOrder(file) {
			n, ok := s.graph.Node(id)
			if !ok {
				continue
			}
			if _, err := s.reg.Register(id); err != nil {
				return err
			}
			if err := s.requestNode(n, order); err != nil {
				return err
			}
		}
	}
	return nil
}

// reachedFiles returns the files declaring any walked node, in order of
// first appearance
func (s *session) reachedFiles() []*schema.Node {
	var files []*schema.Node
	seen := make(map[schema.ID]bool)
	for _, id := range s.walker.Order() {
		file, err := s.graph.File(id)
		if err != nil || seen[file.ID] {
			continue
		}
		seen[file.ID] = true
		files = append(files, file)
	}
	return files
}

// declarationOrder lists the nodes declared under file in preorder: each
// node, then its nested declarations, then its group fields in field order
func (s *session) declarationOrder(file *schema.Node) []schema.ID {
	var order []schema.ID
	var visit func(id schema.ID)
	visit = func(id schema.ID) {
		n, ok := s.graph.Node(id)
		if !ok {
			return
		}
		if n.Kind != schema.KindFile {
			order = append(order, id)
		}
		for _, nested := range n.NestedIDs {
			visit(nested)
		}
		for _, f := range n.Fields {
			if f.IsGroup() {
				visit(f.GroupID)
			}
		}
	}
	visit(file.ID)
	return order
}

func (s *session) requestNode(n *schema.Node, order int) error {
	var targets map[registry.Role]string
	internal, _ := s.reg.Internal(n.ID)

	switch n.Kind {
	case schema.KindStruct:
		if n.IsGroup {
			if f, ok := s.graph.GroupField(n.ID); ok && f.IsAnonymous() {
				return nil
			}
		}
		targets = map[registry.Role]string{
			registry.RoleReader:  internal + ".Reader",
			registry.RoleBuilder: internal + ".Builder",
		}
	case schema.KindEnum:
		targets = map[registry.Role]string{
			registry.RoleEnum: internal + ".Value | int",
		}
	case schema.KindInterface:
		targets = map[registry.Role]string{
			registry.RoleClient: internal + ".Client",
			registry.RoleServer: internal + ".Server",
		}
	default:
		return nil
	}

	file, err := s.graph.File(n.ID)
	if err != nil {
		return err
	}
	qualifiers, err := s.qualifiers(n)
	if err != nil {
		return err
	}
	base := s.localName(n)

	if err := s.reg.Request(registry.Request{
		Subject:       registry.Subject{Node: n.ID},
		Declared:      n.DisplayName,
		Base:          base,
		Qualifiers:    qualifiers,
		FileQualifier: fileQualifier(file),
		File:          file.ID,
		Order:         order,
		Targets:       targets,
	}); err != nil {
		return err
	}

	if n.Kind != schema.KindInterface {
		return nil
	}
	for _, m := range n.Methods {
		pascal := util.ToPascalCase(m.Name)
		if err := s.reg.Request(registry.Request{
			Subject:       registry.Subject{Node: n.ID, Method: m.Name},
			Declared:      n.DisplayName + "." + m.Name,
			Base:          pascal,
			Qualifiers:    append(append([]string{}, qualifiers...), base),
			FileQualifier: fileQualifier(file),
			File:          file.ID,
			Order:         order,
			Targets: map[registry.Role]string{
				registry.RoleResult: internal + "." + pascal + "Result",
			},
		}); err != nil {
			return err
		}
	}
	return nil
}

// localName is the PascalCase base of a node's aliases; named groups use
// their field name
func (s *session) localName(n *schema.Node) string {
	if n.IsGroup {
		if f, ok := s.graph.GroupField(n.ID); ok {
			return util.ToPascalCase(f.Name)
		}
	}
	return util.ToPascalCase(n.Name)
}

// qualifiers returns the local names of n's enclosing scopes, outermost first
func (s *session) qualifiers(n *schema.Node) ([]string, error) {
	ancestors, err := s.graph.Ancestors(n.ID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, a := range ancestors {
		if a.IsGroup {
			if f, ok := s.graph.GroupField(a.ID); ok && f.IsAnonymous() {
				continue
			}
		}
		out = append(out, s.localName(a))
	}
	return out, nil
}
