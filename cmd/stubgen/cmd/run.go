package cmd

import (
	"path/filepath"

	"github.com/teranos/stubgen/config"
	"github.com/teranos/stubgen/logger"
	"github.com/teranos/stubgen/schema"
	"github.com/teranos/stubgen/typegen"
	"github.com/teranos/stubgen/typegen/python"
)

// generation is one decoded document and the stubs generated from it
type generation struct {
	cfg    *config.Config
	doc    string
	outDir string
	result *typegen.Result
}

// generate decodes doc and runs the Python generator over it. Nothing is
// written here.
func generate(doc string) (*generation, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	format, err := schema.DetectFormat(doc, cfg.Input.Format)
	if err != nil {
		return nil, err
	}
	graph, err := schema.DecodeFile(doc, format)
	if err != nil {
		return nil, err
	}
	logger.Infow("Schema document loaded",
		logger.FieldFile, doc,
		logger.FieldFormat, format,
		logger.FieldCount, graph.Len())

	gen := python.NewGenerator(
		python.WithSuffix(cfg.GetSuffix()),
		python.WithHeader(cfg.Output.Header),
	)
	result, err := gen.Generate(graph)
	if err != nil {
		return nil, err
	}

	outDir := cfg.Output.Dir
	if outDir == "" {
		outDir = filepath.Dir(doc)
	}

	return &generation{cfg: cfg, doc: doc, outDir: outDir, result: result}, nil
}

func (g *generation) writeOptions() typegen.WriteOptions {
	return typegen.WriteOptions{
		PyTyped:  g.cfg.Output.PyTyped,
		DirPerm:  config.DefaultDirPermissions,
		FilePerm: config.DefaultFilePermissions,
	}
}
