// Package typegen turns a schema graph into declaration files for a
// downstream type checker, and checks or writes the result.
package typegen

import "github.com/teranos/stubgen/schema"

// Generator produces declaration files for one target language
type Generator interface {
	// Language returns the target language name (e.g. "python")
	Language() string

	// FileExtension returns the extension of generated files (e.g. "pyi")
	FileExtension() string

	// Generate runs one complete generation over the graph. It either returns
	// every requested file or an error; there is no partial result.
	Generate(g *schema.Graph) (*Result, error)
}
