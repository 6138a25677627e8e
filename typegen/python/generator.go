// Package python generates pycapnp-compatible .pyi stubs from a schema graph.
//
// One generation run walks the graph from the requested files, assigns
// internal module identifiers and public aliases, synthesizes a declaration
// tree per requested file and emits it as text. A run either produces every
// file or fails with one of the fatal errors of package errors.
package python

import (
	"time"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen"
)

// DefaultSuffix is appended to the file stem of each stub
const DefaultSuffix = "_capnp.pyi"

type options struct {
	suffix string
	header bool
}

// Option configures a Generator
type Option func(*options)

// WithSuffix sets the stub file suffix, e.g. "_capnp.pyi"
func WithSuffix(suffix string) Option {
	return func(o *options) {
		if suffix != "" {
			o.suffix = suffix
		}
	}
}

// WithHeader toggles the docstring and generated-code marker at the top of
// each stub
func WithHeader(enabled bool) Option {
	return func(o *options) {
		o.header = enabled
	}
}

// Generator implements typegen.Generator for Python stubs
type Generator struct {
	opts options
}

// NewGenerator creates a new Python generator
func NewGenerator(opts ...Option) *Generator {
	o := options{suffix: DefaultSuffix, header: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{opts: o}
}

// Language returns "python"
func (g *Generator) Language() string {
	return "python"
}

// FileExtension returns "pyi"
func (g *Generator) FileExtension() string {
	return "pyi"
}

// Generate runs one generation over graph. Runs share no state, so a
// Generator may be reused.
func (g *Generator) Generate(graph *schema.Graph) (*typegen.Result, error) {
	if graph == nil {
		return nil, errors.New("nil schema graph")
	}
	return newSession(graph, g.opts).run()
}

func (s *session) run() (*typegen.Result, error) {
	start := time.Now()
	roots := dedupe(s.graph.RequestedFiles())

	if err := s.walker.Walk(roots...); err != nil {
		return nil, err
	}
	if err := s.requestAliases(); err != nil {
		return nil, err
	}
	if err := s.reg.Resolve(); err != nil {
		return nil, err
	}

	result := &typegen.Result{}
	paths := make(map[string]schema.ID, len(roots))
	for _, id := range roots {
		file, err := s.graph.File(id)
		if err != nil {
			return nil, err
		}
		out := s.outputPath(file)
		if prev, ok := paths[out]; ok {
			return nil, errors.NewNameCollision(out, uint64(prev), uint64(id))
		}
		paths[out] = id

		fs := s.fileState(file)
		decls, err := s.synthFile(fs)
		if err != nil {
			return nil, errors.Wrapf(err, "synthesizing %s", file.Name)
		}
		content, err := s.emitFile(fs, decls)
		if err != nil {
			return nil, errors.Wrapf(err, "emitting %s", file.Name)
		}
		result.Files = append(result.Files, typegen.File{
			Source:  file.Name,
			Path:    out,
			Content: content,
		})
		s.log.Infow("Generated stub",
			logger.FieldFile, file.Name,
			logger.FieldOutput, out)
	}

	if undeclared := s.reg.Undeclared(); len(undeclared) > 0 {
		ids := make([]uint64, len(undeclared))
		for i, id := range undeclared {
			ids[i] = uint64(id)
		}
		return nil, errors.NewPendingReference(ids...)
	}

	// aliases of imported files are not part of this run's output
	for _, a := range s.reg.Table() {
		fs, emitted := s.files[a.File]
		if !emitted {
			continue
		}
		source := fs.node.Name
		result.Aliases = append(result.Aliases, typegen.Alias{
			Name:   a.Name,
			Target: a.Target,
			Role:   string(a.Role),
			NodeID: uint64(a.Subject.Node),
			Source: source,
		})
	}

	s.log.Infow("Generation complete",
		logger.FieldCount, len(result.Files),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return result, nil
}

// dedupe drops repeated IDs, keeping first occurrences in order
func dedupe(ids []schema.ID) []schema.ID {
	seen := make(map[schema.ID]bool, len(ids))
	out := make([]schema.ID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
