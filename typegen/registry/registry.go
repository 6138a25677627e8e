// Package registry assigns names for one generation run: the internal module
// identifier of every schema node, and the public aliases that expose a
// node's views (Reader, Builder, ...) under short, collision-free names.
//
// Each declaring file is its own alias namespace: a file's aliases depend
// only on that file's subjects, so a stub names its aliases the same way
// whichever other files share the run. Within a file, when several subjects
// want the same alias they are served in priority order (shorter declared
// name first, then earlier declaration order), and each takes the first
// qualification level at which all of its role aliases are still free:
//
//	level 0: local name         Inner      -> InnerReader
//	level 1: ancestor-qualified OuterInner -> OuterInnerReader
//	level 2: file-qualified     AddressbookOuterInner
//
// A subject left without a free level is a fatal naming collision.
package registry

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/util"
)

// Role is the view of a node an alias exposes. Its string is also the
// alias suffix.
type Role string

// Roles
const (
	RoleReader  Role = "Reader"
	RoleBuilder Role = "Builder"
	RoleClient  Role = "Client"
	RoleServer  Role = "Server"
	RoleResult  Role = "Result"
	RoleEnum    Role = "Enum"
)

// Subject is what an alias names: a node, or one method of an interface
// node (for Result aliases)
type Subject struct {
	Node   schema.ID
	Method string
}

func (s Subject) String() string {
	if s.Method != "" {
		return s.Node.String() + "." + s.Method
	}
	return s.Node.String()
}

// Request asks for aliases for one subject
type Request struct {
	Subject Subject

	// Declared is the fully qualified declared name; shorter names win ties
	Declared string

	// Base is the local PascalCase name, e.g. "PhoneNumber"
	Base string

	// Qualifiers are the PascalCase names of the enclosing scopes,
	// outermost first
	Qualifiers []string

	// FileQualifier is the PascalCase stem of the declaring file
	FileQualifier string

	// File is the declaring file
	File schema.ID

	// Order is the subject's position in its file's declaration order
	Order int

	// Targets maps each requested role to the expression its alias stands for
	Targets map[Role]string
}

// Alias is one entry of the alias table
type Alias struct {
	Name    string
	Target  string
	Role    Role
	Subject Subject
	File    schema.ID
}

// Registry holds the naming state of one generation run. It is not safe for
// concurrent use; each run owns its own Registry.
type Registry struct {
	graph *schema.Graph
	log   *zap.SugaredLogger

	internal map[schema.ID]string
	known    map[schema.ID]bool
	segments map[schema.ID]map[string]schema.ID // scope -> segment -> owner

	referenced map[schema.ID]bool
	declared   map[schema.ID]bool

	requests  []*Request
	bySubject map[Subject]*Request
	reserved  map[schema.ID]map[string]schema.ID // file -> name -> owner

	resolved bool
	aliases  map[Subject]map[Role]string
	owners   map[schema.ID]map[string]Subject // file -> alias -> subject
}

// New creates an empty registry over g
func New(g *schema.Graph) *Registry {
	return &Registry{
		graph:      g,
		log:        logger.ComponentLogger("registry"),
		internal:   make(map[schema.ID]string),
		known:      make(map[schema.ID]bool),
		segments:   make(map[schema.ID]map[string]schema.ID),
		referenced: make(map[schema.ID]bool),
		declared:   make(map[schema.ID]bool),
		bySubject:  make(map[Subject]*Request),
		reserved:   make(map[schema.ID]map[string]schema.ID),
		aliases:    make(map[Subject]map[Role]string),
		owners:     make(map[schema.ID]map[string]Subject),
	}
}

// Register records id as known and returns its internal module identifier.
// It is idempotent. File, const and annotation nodes have no module and
// return "". Anonymous groups are flattened into their parent and share
// its identifier.
func (r *Registry) Register(id schema.ID) (string, error) {
	if internal, ok := r.internal[id]; ok {
		return internal, nil
	}

	n, ok := r.graph.Node(id)
	if !ok {
		return "", errors.NewUnresolvedReference(uint64(id), uint64(id), "register")
	}

	var internal string
	switch {
	case n.Kind != schema.KindStruct && n.Kind != schema.KindEnum && n.Kind != schema.KindInterface:
		// no module

	case r.isAnonymousGroup(n):
		parent, err := r.Register(n.ScopeID)
		if err != nil {
			return "", err
		}
		internal = parent

	default:
		segment := Segment(n, r.groupName(n))
		if err := r.claimSegment(n, segment); err != nil {
			return "", err
		}

		parent, err := r.parentInternal(n)
		if err != nil {
			return "", err
		}
		internal = segment
		if parent != "" {
			internal = parent + "." + segment
		}
	}

	r.known[id] = true
	r.internal[id] = internal
	r.log.Debugw("registered node",
		logger.FieldNodeID, id.String(),
		logger.FieldNodeKind, n.Kind,
		logger.FieldInternalID, internal,
	)
	return internal, nil
}

// Internal returns the identifier assigned by Register
func (r *Registry) Internal(id schema.ID) (string, bool) {
	internal, ok := r.internal[id]
	return internal, ok
}

// Known reports whether id has been registered
func (r *Registry) Known(id schema.ID) bool {
	return r.known[id]
}

// Segment returns the internal identifier segment of a module node.
// groupName overrides the node name for named groups.
func Segment(n *schema.Node, groupName string) string {
	name := n.Name
	switch {
	case n.IsGroup:
		if groupName != "" {
			name = groupName
		}
		return "_" + util.ToPascalCase(name) + "GroupModule"
	case n.Kind == schema.KindEnum:
		return "_" + name + "EnumModule"
	case n.Kind == schema.KindInterface:
		return "_" + name + "InterfaceModule"
	default:
		return "_" + name + "StructModule"
	}
}

func (r *Registry) isAnonymousGroup(n *schema.Node) bool {
	if !n.IsGroup {
		return false
	}
	f, ok := r.graph.GroupField(n.ID)
	return ok && f.IsAnonymous()
}

func (r *Registry) groupName(n *schema.Node) string {
	if f, ok := r.graph.GroupField(n.ID); ok {
		return f.Name
	}
	return ""
}

// parentInternal returns the identifier of the enclosing module, or "" for
// nodes declared directly in a file
func (r *Registry) parentInternal(n *schema.Node) (string, error) {
	parent, ok := r.graph.Node(n.ScopeID)
	if !ok {
		return "", errors.NewUnresolvedReference(uint64(n.ID), uint64(n.ScopeID), "scope")
	}
	if parent.Kind == schema.KindFile {
		return "", nil
	}
	return r.Register(parent.ID)
}

// claimSegment fails when a sibling already owns the same segment
func (r *Registry) claimSegment(n *schema.Node, segment string) error {
	siblings, ok := r.segments[n.ScopeID]
	if !ok {
		siblings = make(map[string]schema.ID)
		r.segments[n.ScopeID] = siblings
	}
	if owner, taken := siblings[segment]; taken && owner != n.ID {
		return errors.NewNameCollision(segment, uint64(owner), uint64(n.ID))
	}
	siblings[segment] = n.ID
	return nil
}

// MarkReferenced records that generated code refers to id's module
func (r *Registry) MarkReferenced(id schema.ID) {
	r.referenced[id] = true
}

// MarkDeclared records that id's module has been declared
func (r *Registry) MarkDeclared(id schema.ID) {
	r.declared[id] = true
}

// Declared reports whether id's module has been declared
func (r *Registry) Declared(id schema.ID) bool {
	return r.declared[id]
}

// Undeclared returns the referenced but never declared nodes, sorted
func (r *Registry) Undeclared() []schema.ID {
	var out []schema.ID
	for id := range r.referenced {
		if !r.declared[id] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reserve keeps name out of file's alias space (top-level declarations
// share the module namespace with aliases)
func (r *Registry) Reserve(file schema.ID, name string, owner schema.ID) {
	names, ok := r.reserved[file]
	if !ok {
		names = make(map[string]schema.ID)
		r.reserved[file] = names
	}
	if _, ok := names[name]; !ok {
		names[name] = owner
	}
}

// Request declares an alias subject. Requests must all be made before the
// first call to Resolve or Alias.
func (r *Registry) Request(req Request) error {
	if r.resolved {
		return errors.AssertionFailedf("alias request for %s after resolution", req.Subject)
	}
	if len(req.Targets) == 0 {
		return errors.AssertionFailedf("alias request for %s without roles", req.Subject)
	}
	if _, dup := r.bySubject[req.Subject]; dup {
		return errors.AssertionFailedf("duplicate alias request for %s", req.Subject)
	}

	stored := req
	r.requests = append(r.requests, &stored)
	r.bySubject[req.Subject] = &stored
	return nil
}

// Resolve assigns every requested alias. It runs at most once.
func (r *Registry) Resolve() error {
	if r.resolved {
		return nil
	}
	r.resolved = true

	queue := append([]*Request(nil), r.requests...)
	sort.SliceStable(queue, func(i, j int) bool {
		if len(queue[i].Declared) != len(queue[j].Declared) {
			return len(queue[i].Declared) < len(queue[j].Declared)
		}
		return queue[i].Order < queue[j].Order
	})

	for _, req := range queue {
		if err := r.assign(req); err != nil {
			return err
		}
	}

	r.log.Debugw("aliases resolved", logger.FieldCount, len(r.aliases))
	return nil
}

func (r *Registry) assign(req *Request) error {
	roles := sortedRoles(req.Targets)

	owners, ok := r.owners[req.File]
	if !ok {
		owners = make(map[string]Subject)
		r.owners[req.File] = owners
	}

	var blocker string
	for _, base := range candidates(req) {
		if name, free := r.levelFree(req.File, base, roles); !free {
			blocker = name
			continue
		}

		assigned := make(map[Role]string, len(roles))
		for _, role := range roles {
			name := base + string(role)
			assigned[role] = name
			owners[name] = req.Subject
			r.log.Debugw("assigned alias",
				logger.FieldNodeID, req.Subject.String(),
				logger.FieldAlias, name,
				logger.FieldRole, string(role))
		}
		r.aliases[req.Subject] = assigned
		return nil
	}

	other := r.claimant(req.File, blocker)
	return errors.NewNameCollision(blocker, uint64(other), uint64(req.Subject.Node))
}

// levelFree reports whether every role alias for base is unclaimed in file.
// When it is not, the first taken name is returned.
func (r *Registry) levelFree(file schema.ID, base string, roles []Role) (string, bool) {
	for _, role := range roles {
		name := base + string(role)
		if _, taken := r.owners[file][name]; taken {
			return name, false
		}
		if _, taken := r.reserved[file][name]; taken {
			return name, false
		}
	}
	return "", true
}

// claimant returns the node holding name in file, as alias or reservation
func (r *Registry) claimant(file schema.ID, name string) schema.ID {
	if s, ok := r.owners[file][name]; ok {
		return s.Node
	}
	return r.reserved[file][name]
}

// Claimed reports whether name is bound in file's namespace, as one of its
// aliases or a reserved top-level name
func (r *Registry) Claimed(file schema.ID, name string) bool {
	if err := r.Resolve(); err != nil {
		return false
	}
	if _, ok := r.owners[file][name]; ok {
		return true
	}
	_, ok := r.reserved[file][name]
	return ok
}

// candidates lists the distinct bases of each qualification level
func candidates(req *Request) []string {
	qualified := strings.Join(req.Qualifiers, "") + req.Base
	levels := []string{req.Base, qualified, req.FileQualifier + qualified}

	var out []string
	seen := make(map[string]bool)
	for _, base := range levels {
		if base != "" && !seen[base] {
			seen[base] = true
			out = append(out, base)
		}
	}
	return out
}

func sortedRoles(targets map[Role]string) []Role {
	roles := make([]Role, 0, len(targets))
	for role := range targets {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// Alias returns the public alias of subject in role, resolving on first use
func (r *Registry) Alias(subject Subject, role Role) (string, error) {
	if err := r.Resolve(); err != nil {
		return "", err
	}
	names, ok := r.aliases[subject]
	if !ok {
		return "", errors.AssertionFailedf("no aliases requested for %s", subject)
	}
	name, ok := names[role]
	if !ok {
		return "", errors.AssertionFailedf("no %s alias requested for %s", role, subject)
	}
	return name, nil
}

// Aliases returns every alias of subject keyed by role
func (r *Registry) Aliases(subject Subject) (map[Role]string, error) {
	if err := r.Resolve(); err != nil {
		return nil, err
	}
	names, ok := r.aliases[subject]
	if !ok {
		return nil, errors.AssertionFailedf("no aliases requested for %s", subject)
	}
	out := make(map[Role]string, len(names))
	for role, name := range names {
		out[role] = name
	}
	return out, nil
}

// Table returns every assigned alias sorted by public name, then by
// declaring file
func (r *Registry) Table() []Alias {
	var table []Alias
	for subject, names := range r.aliases {
		req := r.bySubject[subject]
		for role, name := range names {
			table = append(table, Alias{
				Name:    name,
				Target:  req.Targets[role],
				Role:    role,
				Subject: subject,
				File:    req.File,
			})
		}
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Name != table[j].Name {
			return table[i].Name < table[j].Name
		}
		return table[i].File < table[j].File
	})
	return table
}
