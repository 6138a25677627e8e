package python

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/registry"
	"github.com/teranos/stubgen/typegen/util"
	"github.com/teranos/stubgen/typegen/walker"
)

// session is the context of one generation run. Everything mutable lives
// here so that independent runs share nothing.
type session struct {
	opts   options
	graph  *schema.Graph
	reg    *registry.Registry
	walker *walker.Walker
	log    *zap.SugaredLogger

	files map[schema.ID]*fileState
}

// fileState is the per-output-file part of a session
type fileState struct {
	node *schema.Node

	// imports maps a relative module path to the names imported from it,
	// keyed by local name
	imports map[string]map[string]importedName

	// locals holds the local names of every imported subject by role
	locals map[registry.Subject]map[registry.Role]string

	// anyPointer is set once a reader or builder view renders _AnyPointer
	anyPointer bool

	// topLevel maps names bound at module level to their owning node
	topLevel map[string]schema.ID
}

func newSession(g *schema.Graph, opts options) *session {
	reg := registry.New(g)
	return &session{
		opts:   opts,
		graph:  g,
		reg:    reg,
		walker: walker.New(g, reg),
		log:    logger.ComponentLogger("python"),
		files:  make(map[schema.ID]*fileState),
	}
}

func (s *session) fileState(file *schema.Node) *fileState {
	fs, ok := s.files[file.ID]
	if !ok {
		fs = &fileState{
			node:     file,
			imports:  make(map[string]map[string]importedName),
			locals:   make(map[registry.Subject]map[registry.Role]string),
			topLevel: make(map[string]schema.ID),
		}
		s.files[file.ID] = fs
	}
	return fs
}

// importedName is a public alias of another file as bound by an import
type importedName struct {
	Name  string
	Owner schema.ID
}

// addImport records that name must be imported from module as local
func (fs *fileState) addImport(module, name, local string, owner schema.ID) {
	names, ok := fs.imports[module]
	if !ok {
		names = make(map[string]importedName)
		fs.imports[module] = names
	}
	names[local] = importedName{Name: name, Owner: owner}
}

// importTaken reports whether local is already bound by an import of a
// different subject
func (fs *fileState) importTaken(local string, subject registry.Subject) bool {
	for other, names := range fs.locals {
		if other == subject {
			continue
		}
		for _, name := range names {
			if name == local {
				return true
			}
		}
	}
	return false
}

// bind records a module-level name, failing if another node already bound it
func (fs *fileState) bind(name string, owner schema.ID) error {
	if prev, ok := fs.topLevel[name]; ok && prev != owner {
		return errors.NewNameCollision(name, uint64(prev), uint64(owner))
	}
	fs.topLevel[name] = owner
	return nil
}

// sourcePath normalizes a file node name into a slash-separated relative path
func sourcePath(file *schema.Node) string {
	p := path.Clean(strings.ReplaceAll(file.Name, `\`, "/"))
	return strings.TrimLeft(p, "/")
}

// fileStem returns the file name without directory and extension:
// "sub/addressbook.capnp" -> "addressbook"
func fileStem(file *schema.Node) string {
	base := path.Base(sourcePath(file))
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// fileDirs returns the identifier-safe directory segments of a file
func fileDirs(file *schema.Node) []string {
	dir := path.Dir(sourcePath(file))
	if dir == "." || dir == "" {
		return nil
	}
	var dirs []string
	for _, part := range strings.Split(dir, "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		dirs = append(dirs, util.ToIdentifier(part))
	}
	return dirs
}

// moduleName is the Python module name of a file's stub: "addressbook_capnp"
func (s *session) moduleName(file *schema.Node) string {
	return util.ToIdentifier(fileStem(file)) + strings.TrimSuffix(s.opts.suffix, ".pyi")
}

// outputPath is the stub path relative to the output root
func (s *session) outputPath(file *schema.Node) string {
	name := util.ToIdentifier(fileStem(file)) + s.opts.suffix
	return path.Join(append(fileDirs(file), name)...)
}

// relativeModule is the relative import path from one file's stub to another's
func (s *session) relativeModule(from, to *schema.Node) string {
	fromDirs, toDirs := fileDirs(from), fileDirs(to)
	common := 0
	for common < len(fromDirs) && common < len(toDirs) && fromDirs[common] == toDirs[common] {
		common++
	}
	dots := strings.Repeat(".", 1+len(fromDirs)-common)
	rest := append(append([]string{}, toDirs[common:]...), s.moduleName(to))
	return dots + strings.Join(rest, ".")
}

// fileQualifier is the PascalCase stem used by level-2 aliases
func fileQualifier(file *schema.Node) string {
	return util.ToPascalCase(util.ToIdentifier(fileStem(file)))
}

// pathQualifier is the PascalCase directory path and stem of a file:
// "common/shared.capnp" -> "CommonShared"
func pathQualifier(file *schema.Node) string {
	var b strings.Builder
	for _, dir := range fileDirs(file) {
		b.WriteString(util.ToPascalCase(dir))
	}
	b.WriteString(fileQualifier(file))
	return b.String()
}
