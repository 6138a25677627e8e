package python

import (
	"strconv"
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/registry"
	"github.com/teranos/stubgen/typegen/util"
)

// view selects which face of a type a slot exposes
type view int

const (
	viewReader view = iota
	viewBuilder
	viewSetter
	viewDict
)

const anyPointerClass = "_AnyPointer"

// pyType renders t as seen from the current file through view v
func (s *session) pyType(fs *fileState, t *schema.Type, v view) (string, error) {
	if t == nil {
		return "", errors.AssertionFailedf("nil type in %s", fs.node.ID)
	}

	anyPointer := "Any"
	if v == viewReader || v == viewBuilder {
		anyPointer = anyPointerClass
	}

	cfg := &util.TypeConverterConfig{
		TypeMapping: TypeMapping,
		ListFormat:  func(elem string) string { return "Sequence[" + elem + "]" },
		Ref: func(ref schema.Type) (string, error) {
			return s.nodeType(fs, ref, v)
		},
		AnyPointerType: anyPointer,
	}
	py, err := util.ConvertType(*t, cfg)
	if err != nil {
		return "", err
	}
	if strings.Contains(py, anyPointerClass) {
		fs.anyPointer = true
	}
	return py, nil
}

// nodeType renders a reference to an enum, struct or interface node
func (s *session) nodeType(fs *fileState, t schema.Type, v view) (string, error) {
	ref, ok := s.walker.Ref(t.TypeID)
	if !ok {
		return "", errors.NewUnresolvedReference(uint64(fs.node.ID), uint64(t.TypeID), "type")
	}
	if ref.Pending() {
		return "", errors.NewPendingReference(uint64(t.TypeID))
	}

	if ref.File == fs.node.ID {
		s.reg.MarkReferenced(t.TypeID)
		return localType(ref.Internal, t.Kind, v), nil
	}
	return s.foreignType(fs, ref.Target, ref.File, t.Kind, v)
}

// localType renders a same-file reference through internal module identifiers
func localType(internal string, kind schema.TypeKind, v view) string {
	switch kind {
	case schema.TypeEnum:
		if v == viewSetter {
			return internal + ".Value | int"
		}
		return internal + ".Value"
	case schema.TypeInterface:
		switch v {
		case viewSetter:
			return internal + ".Client | " + internal + ".Server"
		case viewDict:
			return "Any"
		default:
			return internal + ".Client"
		}
	default:
		switch v {
		case viewBuilder:
			return internal + ".Builder"
		case viewSetter:
			return internal + ".Reader | " + internal + ".Builder | " + internal + ".Dict"
		case viewDict:
			return internal + ".Dict"
		default:
			return internal + ".Reader"
		}
	}
}

// foreignType renders a cross-file reference through the target file's
// public aliases and records the imports it needs
func (s *session) foreignType(fs *fileState, target, file schema.ID, kind schema.TypeKind, v view) (string, error) {
	fileNode, ok := s.graph.Node(file)
	if !ok {
		return "", errors.NewUnresolvedReference(uint64(fs.node.ID), uint64(file), "import")
	}
	use := func(roles ...registry.Role) ([]string, error) {
		return s.importAliases(fs, target, fileNode, roles...)
	}

	switch kind {
	case schema.TypeEnum:
		// foreign enums are only reachable through the flattened Value | int alias
		names, err := use(registry.RoleEnum)
		if err != nil {
			return "", err
		}
		return names[0], nil

	case schema.TypeInterface:
		switch v {
		case viewSetter:
			names, err := use(registry.RoleClient, registry.RoleServer)
			if err != nil {
				return "", err
			}
			return names[0] + " | " + names[1], nil
		case viewDict:
			return "Any", nil
		default:
			names, err := use(registry.RoleClient)
			if err != nil {
				return "", err
			}
			return names[0], nil
		}

	default:
		switch v {
		case viewBuilder:
			names, err := use(registry.RoleBuilder)
			if err != nil {
				return "", err
			}
			return names[0], nil
		case viewSetter:
			names, err := use(registry.RoleReader, registry.RoleBuilder)
			if err != nil {
				return "", err
			}
			return names[0] + " | " + names[1] + " | dict[str, Any]", nil
		case viewDict:
			return "dict[str, Any]", nil
		default:
			names, err := use(registry.RoleReader)
			if err != nil {
				return "", err
			}
			return names[0], nil
		}
	}
}

// importAliases records the imports of target's role aliases from file and
// returns the local names they are bound to
func (s *session) importAliases(fs *fileState, target schema.ID, file *schema.Node, roles ...registry.Role) ([]string, error) {
	subject := registry.Subject{Node: target}
	aliases, err := s.reg.Aliases(subject)
	if err != nil {
		return nil, err
	}
	module := s.relativeModule(fs.node, file)
	locals := s.importLocals(fs, subject, file, aliases)

	names := make([]string, len(roles))
	for i, role := range roles {
		name, ok := aliases[role]
		if !ok {
			return nil, errors.AssertionFailedf("no %s alias requested for %s", role, subject)
		}
		fs.addImport(module, name, locals[role], target)
		names[i] = locals[role]
	}
	return names, nil
}

// importLocals picks the names a file binds a foreign subject's aliases to.
// The public alias is used when it is free in the importing file; otherwise
// every role takes the same qualifying prefix, first the declaring file's
// stem, then its full path, then a numbered path.
func (s *session) importLocals(fs *fileState, subject registry.Subject, file *schema.Node, aliases map[registry.Role]string) map[registry.Role]string {
	if locals, ok := fs.locals[subject]; ok {
		return locals
	}

	free := func(prefix string) (map[registry.Role]string, bool) {
		locals := make(map[registry.Role]string, len(aliases))
		for role, alias := range aliases {
			local := prefix + alias
			_, std := stdlibImports[local]
			if std || runtimeNames[local] || s.reg.Claimed(fs.node.ID, local) || fs.importTaken(local, subject) {
				return nil, false
			}
			locals[role] = local
		}
		return locals, true
	}

	for _, prefix := range []string{"", fileQualifier(file), pathQualifier(file)} {
		if locals, ok := free(prefix); ok {
			fs.locals[subject] = locals
			return locals
		}
	}
	for n := 2; ; n++ {
		if locals, ok := free(pathQualifier(file) + strconv.Itoa(n)); ok {
			fs.locals[subject] = locals
			return locals
		}
	}
}

// optional widens a setter type to accept None
func optional(t string) string {
	if t == "None" || strings.HasSuffix(t, "| None") {
		return t
	}
	return t + " | None"
}
