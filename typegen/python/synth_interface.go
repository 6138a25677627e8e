package python

import (
	"strings"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/registry"
	"github.com/teranos/stubgen/typegen/util"
)

// synthInterface renders an interface module: per-method Params, Result and
// CallContext protocols, the Client and Server surfaces, and _new_client
func (s *session) synthInterface(fs *fileState, n *schema.Node) (*Class, error) {
	internal, err := s.internalOf(n)
	if err != nil {
		return nil, err
	}
	s.reg.MarkDeclared(n.ID)

	cls := &Class{
		Name:  className(internal),
		Bases: []string{"_InterfaceModule"},
		Doc:   docLines(n.Doc),
	}
	nested, err := s.nestedDecls(fs, n)
	if err != nil {
		return nil, err
	}
	cls.Body = append(cls.Body, nested...)

	clientBases, serverBases, err := s.capabilityBases(fs, n)
	if err != nil {
		return nil, err
	}
	client := &Class{Name: "Client", Bases: clientBases}
	server := &Class{Name: "Server", Bases: serverBases}

	protocols := make(map[string]bool, len(n.Methods))
	for _, m := range n.Methods {
		pascal := util.ToPascalCase(m.Name)
		if protocols[pascal] {
			return nil, errors.NewNameCollision(pascal+"Result", uint64(n.ID), uint64(n.ID))
		}
		protocols[pascal] = true

		decls, err := s.methodProtocols(fs, internal, pascal, m)
		if err != nil {
			return nil, err
		}
		cls.Body = append(cls.Body, decls...)

		call, err := s.clientMethod(fs, internal, pascal, m)
		if err != nil {
			return nil, err
		}
		client.Body = append(client.Body, call)

		impl, err := s.serverMethods(fs, internal, pascal, m)
		if err != nil {
			return nil, err
		}
		server.Body = append(server.Body, impl...)
	}

	cls.Body = append(cls.Body, client, server, &Def{
		Name:    "_new_client",
		Params:  []Param{{Name: "server", Type: internal + ".Server"}},
		Returns: internal + ".Client",
	})
	return cls, nil
}

// capabilityBases returns the base classes of Client and Server: the
// superclasses' surfaces, or the runtime's dynamic capability classes
func (s *session) capabilityBases(fs *fileState, n *schema.Node) ([]string, []string, error) {
	if len(n.Superclasses) == 0 {
		return []string{"_DynamicCapabilityClient"}, []string{"_DynamicCapabilityServer"}, nil
	}
	var clients, servers []string
	for _, id := range n.Superclasses {
		ref, ok := s.walker.Ref(id)
		if !ok {
			return nil, nil, errors.NewUnresolvedReference(uint64(n.ID), uint64(id), "superclass")
		}
		if ref.Pending() {
			return nil, nil, errors.NewPendingReference(uint64(id))
		}
		if ref.File == fs.node.ID {
			s.reg.MarkReferenced(id)
			clients = append(clients, ref.Internal+".Client")
			servers = append(servers, ref.Internal+".Server")
			continue
		}
		file, ok := s.graph.Node(ref.File)
		if !ok {
			return nil, nil, errors.NewUnresolvedReference(uint64(n.ID), uint64(ref.File), "import")
		}
		names, err := s.importAliases(fs, id, file, registry.RoleClient, registry.RoleServer)
		if err != nil {
			return nil, nil, err
		}
		client, server := names[0], names[1]
		clients = append(clients, client)
		servers = append(servers, server)
	}
	return clients, servers, nil
}

// methodProtocols renders <M>Params, <M>Result and <M>CallContext
func (s *session) methodProtocols(fs *fileState, internal, pascal string, m schema.Method) ([]Decl, error) {
	params := &Class{Name: pascal + "Params", Bases: []string{"Protocol"}}
	for _, p := range m.Params {
		py, err := s.pyType(fs, p.Type, viewReader)
		if err != nil {
			return nil, err
		}
		params.Body = append(params.Body, &Attr{Name: toPythonIdent(p.Name), Type: py})
	}

	result := &Class{Name: pascal + "Result", Bases: []string{"Protocol"}}
	for _, r := range m.Results {
		py, err := s.pyType(fs, r.Type, viewReader)
		if err != nil {
			return nil, err
		}
		result.Body = append(result.Body, &Attr{Name: toPythonIdent(r.Name), Type: py})
	}

	context := &Class{Name: pascal + "CallContext", Bases: []string{"Protocol"}}
	context.Body = append(context.Body,
		&Attr{Name: "params", Type: internal + "." + params.Name},
		&Attr{Name: "results", Type: internal + "." + result.Name},
	)
	return []Decl{params, result, context}, nil
}

// clientMethod renders the caller surface: every parameter optional,
// awaiting the Result protocol
func (s *session) clientMethod(fs *fileState, internal, pascal string, m schema.Method) (*Def, error) {
	var params []Param
	for _, p := range m.Params {
		py, err := s.pyType(fs, p.Type, viewSetter)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: toPythonIdent(p.Name), Type: optional(py), Default: "None"})
	}
	return &Def{
		Name:    toPythonIdent(m.Name),
		Params:  params,
		Returns: "Awaitable[" + internal + "." + pascal + "Result]",
		Doc:     docLines(m.Doc),
	}, nil
}

// serverMethods renders the implementer surface: the spread variant taking
// reader-typed params plus _context, and the <m>_context variant
func (s *session) serverMethods(fs *fileState, internal, pascal string, m schema.Method) ([]Decl, error) {
	contextType := internal + "." + pascal + "CallContext"

	var params []Param
	for _, p := range m.Params {
		py, err := s.pyType(fs, p.Type, viewReader)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: toPythonIdent(p.Name), Type: py})
	}
	params = append(params,
		Param{Name: "_context", Type: contextType},
		Param{Name: "**kwargs", Type: "Any"},
	)

	var results []string
	for _, r := range m.Results {
		py, err := s.pyType(fs, r.Type, viewSetter)
		if err != nil {
			return nil, err
		}
		results = append(results, py)
	}
	var returns string
	switch len(results) {
	case 0:
		returns = "Awaitable[None]"
	case 1:
		returns = "Awaitable[" + optional(results[0]) + "]"
	default:
		returns = "Awaitable[tuple[" + strings.Join(results, ", ") + "] | None]"
	}

	return []Decl{
		&Def{Name: toPythonIdent(m.Name), Params: params, Returns: returns},
		&Def{
			Name:    m.Name + "_context",
			Params:  []Param{{Name: "context", Type: contextType}},
			Returns: "Awaitable[None]",
		},
	}, nil
}
