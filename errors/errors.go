// Package errors provides error handling for stubgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// On top of that it defines the generator's fatal error taxonomy. Every
// failure of a generation run wraps exactly one of the sentinels below, so
// callers can classify it with errors.Is:
//
//	if errors.Is(err, errors.ErrNameCollision) {
//	    // two schema nodes want the same public alias
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf   = crdb.AssertionFailedf
	IsAssertionFailure = crdb.IsAssertionFailure
)

// Fatal generation errors. None of them is retried: the generator is a pure
// function of its input graph, so a run that hits one aborts and writes nothing.
var (
	// ErrUnresolvedReference: an edge targets a node ID absent from the graph
	ErrUnresolvedReference = New("unresolved reference")

	// ErrPendingReference: a TypeRef was still pending after traversal (walker
	// did not reach its fixpoint)
	ErrPendingReference = New("pending reference")

	// ErrNameCollision: two nodes cannot be given distinct names
	ErrNameCollision = New("naming collision")

	// ErrUnsupported: a node kind or construct the synthesizer does not model
	ErrUnsupported = New("unsupported construct")

	// ErrInvalidSchema: the schema document is malformed
	ErrInvalidSchema = New("invalid schema")
)

// nodeID formats a node ID the same way schema.ID does; kept local to avoid an
// import cycle with the schema package.
func nodeID(id uint64) string {
	return fmt.Sprintf("0x%016x", id)
}

// NewUnresolvedReference reports an edge from one node to a missing node ID
func NewUnresolvedReference(from, target uint64, via string) error {
	err := Wrapf(ErrUnresolvedReference, "node %s references %s via %s", nodeID(from), nodeID(target), via)
	return WithHint(err, "the schema document must contain every node reachable from the requested files, including imported files")
}

// NewPendingReference reports TypeRefs that never left the pending state
func NewPendingReference(targets ...uint64) error {
	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = nodeID(t)
	}
	return Wrapf(ErrPendingReference, "references to %v were never resolved", ids)
}

// NewNameCollision reports two nodes that want the same name
func NewNameCollision(name string, first, second uint64) error {
	err := Wrapf(ErrNameCollision, "%q claimed by both %s and %s", name, nodeID(first), nodeID(second))
	return WithHint(err, "two nodes share a fully qualified declared name; check the schema document for duplicates")
}

// NewUnsupported reports a node kind or construct with no declaration shape
func NewUnsupported(id uint64, kind, what string) error {
	return Wrapf(ErrUnsupported, "node %s (%s): %s", nodeID(id), kind, what)
}

// NewInvalidSchema creates an invalid-schema error with a formatted message
func NewInvalidSchema(format string, args ...interface{}) error {
	return Wrap(ErrInvalidSchema, Newf(format, args...).Error())
}

// IsFatal reports whether err belongs to the generator's error taxonomy
func IsFatal(err error) bool {
	return err != nil && IsAny(err,
		ErrUnresolvedReference,
		ErrPendingReference,
		ErrNameCollision,
		ErrUnsupported,
		ErrInvalidSchema,
	)
}
