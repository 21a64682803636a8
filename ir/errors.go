package ir

import "github.com/cockroachdb/errors"

// Sentinel errors for the conditions a build can run into. Diagnostics carry
// one of these in their Err field so callers can match with errors.Is.
var (
	// ErrMissingType marks a base, interface, or member reference that does
	// not resolve against the canonical table. Never fatal.
	ErrMissingType = errors.New("missing type")

	// ErrCyclicInheritance marks a base chain that revisits a record.
	ErrCyclicInheritance = errors.New("cyclic inheritance")

	// ErrUnknownKind marks a type whose kind tag is outside the defined set.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrNullType marks a record without a type.
	ErrNullType = errors.New("null type")

	// ErrMalformedBatch marks a discovery batch that violates the structural
	// invariants of the merge step. This is the only error that aborts a run.
	ErrMalformedBatch = errors.New("malformed batch")

	// ErrUnsupportedType marks a source type that has no C++ mapping.
	ErrUnsupportedType = errors.New("unsupported type")
)
