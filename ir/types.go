package ir

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// String formats the location as file:line:column.
func (s Source) String() string {
	if s.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Diagnostic codes.
const (
	CodeMissingType       = "missing_type"
	CodeCyclicInheritance = "cyclic_inheritance"
	CodeUnknownKind       = "unknown_kind"
	CodeNullType          = "null_type"
	CodeUnsupportedType   = "unsupported_type"
	CodeUnsupportedMember = "unsupported_member"
)

// Severity grades a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is a non-fatal issue tied to one record.
type Diagnostic struct {
	// Code is a machine-readable identifier, one of the Code constants.
	Code string

	Severity Severity

	// Message is a human-readable description.
	Message string

	// TypeName is the qualified name of the record that triggered it.
	TypeName string

	// Member is the offending member or reference, if any.
	Member string

	// Source is the declaring location, if known.
	Source Source

	// Err wraps one of the package sentinels.
	Err error
}

// String formats the diagnostic for terminal output.
func (d Diagnostic) String() string {
	prefix := d.Severity.String() + " " + d.Code
	if loc := d.Source.String(); loc != "" {
		prefix = loc + ": " + prefix
	}
	return prefix + ": " + d.Message
}

// NewDiagnostic builds a diagnostic for rec whose Err is marked with
// sentinel.
func NewDiagnostic(sentinel error, rec *Record, member, format string, args ...any) Diagnostic {
	msg := fmt.Sprintf(format, args...)
	d := Diagnostic{
		Code:     codeFor(sentinel),
		Severity: severityFor(sentinel),
		Message:  msg,
		TypeName: rec.Name(),
		Member:   member,
		Err:      errors.Mark(errors.New(msg), sentinel),
	}
	if rec != nil {
		d.Source = rec.Source
	}
	return d
}

func codeFor(sentinel error) string {
	switch {
	case errors.Is(sentinel, ErrMissingType):
		return CodeMissingType
	case errors.Is(sentinel, ErrCyclicInheritance):
		return CodeCyclicInheritance
	case errors.Is(sentinel, ErrUnknownKind):
		return CodeUnknownKind
	case errors.Is(sentinel, ErrNullType):
		return CodeNullType
	default:
		return CodeUnsupportedType
	}
}

func severityFor(sentinel error) Severity {
	switch {
	case errors.Is(sentinel, ErrMissingType), errors.Is(sentinel, ErrUnsupportedType):
		return SeverityWarning
	default:
		return SeverityError
	}
}

// DiagnosticSink receives diagnostics. Implementations must be safe for
// concurrent use.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// Diagnostics collects reported diagnostics. The zero value is ready to use.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report appends d.
func (c *Diagnostics) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// All returns the collected diagnostics sorted by type name, code, then
// message so output does not depend on task scheduling.
func (c *Diagnostics) All() []Diagnostic {
	c.mu.Lock()
	out := append([]Diagnostic(nil), c.items...)
	c.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TypeName != out[j].TypeName {
			return out[i].TypeName < out[j].TypeName
		}
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// Len returns the number of diagnostics.
func (c *Diagnostics) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count returns the number of diagnostics with the given code.
func (c *Diagnostics) Count(code string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// HasErrors reports whether any diagnostic has error severity.
func (c *Diagnostics) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
