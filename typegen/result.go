package typegen

import (
	"sort"
)

// Result holds everything one generation run produced.
// This is language-agnostic; each Generator fills it for its own target.
type Result struct {
	// Files holds one generated file per requested schema file, in request order
	Files []File

	// Aliases is the public alias table of the generated files, sorted by Name
	Aliases []Alias
}

// File is one generated output file
type File struct {
	// Source is the schema file the output was generated from, e.g. "addressbook.capnp"
	Source string

	// Path is the output path relative to the output root, e.g. "addressbook_capnp.pyi"
	Path string

	// Content is the complete file content
	Content string
}

// Alias is a public name bound to an internal identifier
type Alias struct {
	// Name is the public name, e.g. "PersonBuilder"
	Name string

	// Target is the expression the name stands for, e.g. "_PersonStructModule.Builder"
	Target string

	// Role is the view the alias names (Reader, Builder, Client, Server, Result, Enum)
	Role string

	// NodeID is the schema node the alias belongs to
	NodeID uint64

	// Source is the schema file declaring the node
	Source string
}

// File returns the generated file for a schema file, if any
func (r *Result) File(source string) (File, bool) {
	for _, f := range r.Files {
		if f.Source == source {
			return f, true
		}
	}
	return File{}, false
}

// Paths returns the output paths of all generated files, sorted
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	sort.Strings(paths)
	return paths
}
