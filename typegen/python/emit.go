package python

import (
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen/registry"
)

// generatedMarker flags the file as generated for linters and reviewers
const generatedMarker = "# Code generated by stubgen. DO NOT EDIT."

// emitFile lays out one stub: header, imports, declaration blocks and the
// alias section
func (s *session) emitFile(fs *fileState, decls []Decl) (string, error) {
	body := NewEmitter()
	renderBlocks(body, decls)

	aliases := s.fileAliases(fs)
	if len(aliases) > 0 {
		if body.Len() > 0 {
			body.Blank()
		}
		for _, a := range aliases {
			if err := fs.bind(a.Name, a.Subject.Node); err != nil {
				return "", err
			}
			(&TypeAliasDecl{Name: a.Name, Target: a.Target}).render(body)
		}
	}

	imports, err := collectImports(fs, body.String())
	if err != nil {
		return "", err
	}

	out := NewEmitter()
	if s.opts.header {
		out.Docstring([]string{"This is an automatically generated stub for `" + fs.node.Name + "`."})
		out.Blank()
		out.Line(generatedMarker)
		out.Blank()
	}
	out.Line("from __future__ import annotations")
	if !imports.empty() {
		out.Blank()
		imports.render(out)
	}
	if body.Len() > 0 {
		out.Blank()
		out.buf.WriteString(body.String())
	}

	s.log.Debugw("Emitted stub",
		logger.FieldFile, fs.node.Name,
		logger.FieldImports, len(fs.imports),
		logger.FieldBytes, out.Len())
	return out.String(), nil
}

// renderBlocks writes top-level declarations separated by blank lines.
// Consecutive annotated names stay together.
func renderBlocks(e *Emitter, decls []Decl) {
	var prev Decl
	for _, d := range decls {
		if prev != nil && !(isBinding(prev) && isBinding(d)) {
			e.Blank()
		}
		d.render(e)
		prev = d
	}
}

func isBinding(d Decl) bool {
	switch d.(type) {
	case *Attr, *TypeAliasDecl:
		return true
	}
	return false
}

// fileAliases returns the alias table entries declared by the file, sorted
// by public name
func (s *session) fileAliases(fs *fileState) []registry.Alias {
	var out []registry.Alias
	for _, a := range s.reg.Table() {
		if a.File == fs.node.ID {
			out = append(out, a)
		}
	}
	return out
}

// declaredIn reports whether id is declared in file
func (s *session) declaredIn(id schema.ID, file *schema.Node) bool {
	f, err := s.graph.File(id)
	return err == nil && f.ID == file.ID
}
