package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across stubgen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Schema graph
	FieldNodeID   = "node_id"
	FieldNodeKind = "node_kind"
	FieldNodeName = "node_name"
	FieldTarget   = "target"
	FieldVia      = "via"
	FieldEdges    = "edges"

	// Naming
	FieldInternalID = "internal_id"
	FieldAlias      = "alias"
	FieldRole       = "role"

	// Components
	FieldComponent = "component"

	// Files and paths
	FieldFile   = "file"
	FieldOutput = "output"
	FieldFormat = "format"
	FieldEvent  = "event"

	// Counts and sizes
	FieldCount   = "count"
	FieldPending = "pending"
	FieldImports = "imports"
	FieldBytes   = "bytes"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Walker struct {
//	    log *zap.SugaredLogger
//	}
//
//	func New() *Walker {
//	    return &Walker{log: logger.ComponentLogger("walker")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
