package schema

import (
	"github.com/teranos/stubgen/errors"
)

// validate checks the structural invariants every later stage relies on.
// References from field types to other nodes are not checked here: a
// missing type target surfaces from the walker as an unresolved reference.
func (g *Graph) validate() error {
	if len(g.requested) == 0 {
		return errors.WithHint(
			errors.NewInvalidSchema("no requested files"),
			"list the file node ids to generate stubs for under requested_files",
		)
	}
	for _, id := range g.requested {
		n, ok := g.nodes[id]
		if !ok {
			return errors.NewInvalidSchema("requested file %s is not in the document", id)
		}
		if n.Kind != KindFile {
			return errors.NewInvalidSchema("requested node %s is a %s, not a file", id, n.Kind)
		}
	}

	for _, id := range g.order {
		if err := g.validateNode(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateNode(n *Node) error {
	if !n.Kind.Valid() {
		return errors.WithHint(
			errors.NewUnsupported(uint64(n.ID), string(n.Kind), "unknown node kind"),
			"known kinds: file, struct, enum, interface, const, annotation",
		)
	}
	// anonymous group nodes are named only through their parent
	if n.Name == "" && !n.IsGroup {
		return errors.NewInvalidSchema("node %s has neither name nor display_name", n.ID)
	}

	if n.Kind == KindFile {
		if n.ScopeID != 0 {
			return errors.NewInvalidSchema("file node %s must not have a scope", n.ID)
		}
	} else {
		parent, ok := g.nodes[n.ScopeID]
		if !ok {
			return errors.NewInvalidSchema("node %s (%s) has missing scope %s", n.ID, n.DisplayName, n.ScopeID)
		}
		if parent.Kind == KindConst || parent.Kind == KindEnum || parent.Kind == KindAnnotation {
			return errors.NewInvalidSchema("node %s is scoped inside %s %s", n.ID, parent.Kind, parent.ID)
		}
	}
	if n.IsGroup && n.Kind != KindStruct {
		return errors.NewInvalidSchema("node %s is marked as a group but is a %s", n.ID, n.Kind)
	}

	for _, nested := range n.NestedIDs {
		child, ok := g.nodes[nested]
		if !ok {
			return errors.NewInvalidSchema("node %s lists missing nested node %s", n.ID, nested)
		}
		if child.ScopeID != n.ID {
			return errors.NewInvalidSchema("nested node %s of %s has scope %s", nested, n.ID, child.ScopeID)
		}
	}

	switch n.Kind {
	case KindStruct:
		if err := g.validateFields(n); err != nil {
			return err
		}
	case KindEnum:
		for i, e := range n.Enumerants {
			if e == "" {
				return errors.NewInvalidSchema("enum %s has an unnamed enumerant at index %d", n.ID, i)
			}
		}
	case KindInterface:
		for _, m := range n.Methods {
			if m.Name == "" {
				return errors.NewInvalidSchema("interface %s has an unnamed method", n.ID)
			}
			for _, f := range append(append([]Field(nil), m.Params...), m.Results...) {
				if f.Name == "" || f.Type == nil {
					return errors.NewInvalidSchema("method %s.%s has a parameter without name or type", n.DisplayName, m.Name)
				}
				if err := validateType(n.ID, *f.Type); err != nil {
					return err
				}
			}
		}
	case KindConst:
		if n.ConstType == nil {
			return errors.NewInvalidSchema("const %s has no type", n.ID)
		}
		if err := validateType(n.ID, *n.ConstType); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateFields(n *Node) error {
	seen := make(map[int]bool)
	for _, f := range n.Fields {
		switch f.Kind {
		case FieldSlot, "":
			if f.Name == "" {
				return errors.NewInvalidSchema("struct %s has an unnamed slot field", n.ID)
			}
			if f.Type == nil {
				return errors.NewInvalidSchema("field %s.%s has no type", n.DisplayName, f.Name)
			}
			if err := validateType(n.ID, *f.Type); err != nil {
				return err
			}
		case FieldGroup:
			group, ok := g.nodes[f.GroupID]
			if !ok {
				return errors.NewInvalidSchema("group field %s.%s has missing group node %s", n.DisplayName, f.Name, f.GroupID)
			}
			if group.Kind != KindStruct || !group.IsGroup {
				return errors.NewInvalidSchema("group field %s.%s points at %s, which is not a group", n.DisplayName, f.Name, f.GroupID)
			}
		default:
			return errors.NewInvalidSchema("field %s.%s has unknown kind %q", n.DisplayName, f.Name, f.Kind)
		}

		if f.Union < 0 || f.Union > n.DiscriminantCount {
			return errors.NewInvalidSchema("field %s.%s has union ordinal %d outside 1..%d", n.DisplayName, f.Name, f.Union, n.DiscriminantCount)
		}
		if f.Union > 0 {
			if seen[f.Union] {
				return errors.NewInvalidSchema("struct %s has two fields with union ordinal %d", n.DisplayName, f.Union)
			}
			seen[f.Union] = true
		}
	}

	if n.DiscriminantCount > 0 && len(seen) != n.DiscriminantCount {
		return errors.WithHint(
			errors.NewInvalidSchema("struct %s declares %d union members but %d fields carry an ordinal", n.DisplayName, n.DiscriminantCount, len(seen)),
			"discriminant_count must equal the number of fields with a non-zero union ordinal",
		)
	}
	if n.DiscriminantCount == 1 {
		return errors.NewInvalidSchema("struct %s has a union with a single member", n.DisplayName)
	}
	return nil
}

func validateType(owner ID, t Type) error {
	if !t.Kind.Valid() {
		return errors.NewInvalidSchema("node %s uses unknown type kind %q", owner, t.Kind)
	}
	switch t.Kind {
	case TypeList:
		if t.Element == nil {
			return errors.NewInvalidSchema("node %s has a list type without element", owner)
		}
		return validateType(owner, *t.Element)
	case TypeEnum, TypeStruct, TypeInterface:
		if t.TypeID == 0 {
			return errors.NewInvalidSchema("node %s has a %s type without type_id", owner, t.Kind)
		}
		for _, b := range t.Brand {
			if err := validateType(owner, b); err != nil {
				return err
			}
		}
	case TypeParameter:
		if t.ParamScope == 0 || t.ParamIndex < 0 {
			return errors.NewInvalidSchema("node %s has a parameter type without scope", owner)
		}
	}
	return nil
}
