package schema

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/version"
)

// Document is the on-disk form of a schema graph
type Document struct {
	FormatVersion  string  `json:"format_version,omitempty" yaml:"format_version,omitempty"`
	RequestedFiles []ID    `json:"requested_files" yaml:"requested_files"`
	Nodes          []*Node `json:"nodes" yaml:"nodes"`
}

// Document formats
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// defaultFormatVersion applies to documents without format_version
const defaultFormatVersion = "1.0.0"

// DetectFormat resolves the document format. An explicit json or yaml wins;
// auto (or empty) picks by extension.
func DetectFormat(path, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case "", FormatAuto:
	default:
		return "", errors.NewInvalidSchema("unknown document format %q", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.WithHint(
		errors.NewInvalidSchema("cannot tell the format of %s from its extension", path),
		"use a .json, .yaml or .yml extension, or set input.format",
	)
}

// DecodeFile reads and decodes the schema document at path
func DecodeFile(path, format string) (*Graph, error) {
	resolved, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema document %s", path)
	}
	g, err := Decode(data, resolved)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return g, nil
}

// Decode parses a schema document in the given format (json or yaml) and
// builds a validated graph
func Decode(data []byte, format string) (*Graph, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "malformed JSON schema document"), errors.ErrInvalidSchema)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "malformed YAML schema document"), errors.ErrInvalidSchema)
		}
	default:
		return nil, errors.NewInvalidSchema("unknown document format %q", format)
	}

	if err := CheckFormatVersion(doc.FormatVersion); err != nil {
		return nil, err
	}
	return NewGraph(doc.Nodes, doc.RequestedFiles)
}

// CheckFormatVersion verifies that a document's format_version is one this
// build can read. An empty version is treated as 1.0.0.
func CheckFormatVersion(v string) error {
	if v == "" {
		v = defaultFormatVersion
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return errors.NewInvalidSchema("format_version %q is not a semantic version", v)
	}
	constraint, err := semver.NewConstraint(version.SchemaFormats)
	if err != nil {
		return errors.Wrap(err, "invalid built-in format constraint")
	}
	if !constraint.Check(parsed) {
		return errors.WithHintf(
			errors.NewInvalidSchema("format_version %s is not supported", parsed),
			"this build reads schema documents with format_version %s", version.SchemaFormats,
		)
	}
	return nil
}
