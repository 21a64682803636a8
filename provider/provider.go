// Package provider implements discovery passes that turn Go code or type
// manifests into ir.Batch values for the merge step.
//
// Every provider reports one batch per compilation unit. Batches may
// describe the same type more than once; graph.Merge reconciles them.
package provider

import (
	"context"
	"strings"

	"github.com/broady/bindgen/ir"
)

// Provider discovers types.
type Provider interface {
	// Discover returns one batch per unit. Non-fatal problems are reported
	// to the provider's diagnostic sink; an error aborts the run.
	Discover(ctx context.Context) ([]ir.Batch, error)
}

// Namespacer maps Go package paths to C++ namespace paths.
//
// The package path is trimmed of StripPrefix, split on "/", and appended
// to Root. Segments are rewritten into valid identifiers.
type Namespacer struct {
	Root        []string
	StripPrefix string
}

// For returns the namespace path for pkgPath.
func (n Namespacer) For(pkgPath string) []string {
	out := append([]string(nil), n.Root...)
	rest := pkgPath
	if p := strings.TrimSuffix(n.StripPrefix, "/"); p != "" {
		if rest == p {
			rest = ""
		} else if strings.HasPrefix(rest, p+"/") {
			rest = rest[len(p)+1:]
		}
	}
	for _, seg := range strings.Split(rest, "/") {
		if seg == "" {
			continue
		}
		out = append(out, namespaceSegment(seg))
	}
	return out
}

func namespaceSegment(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// discard drops diagnostics when a provider has no sink configured.
type discard struct{}

func (discard) Report(ir.Diagnostic) {}

func sinkOrDiscard(s ir.DiagnosticSink) ir.DiagnosticSink {
	if s == nil {
		return discard{}
	}
	return s
}

// unsupported reports a type or member that has no C++ mapping.
func unsupported(sink ir.DiagnosticSink, rec *ir.Record, typeName, member string, src ir.Source, format string, args ...any) {
	d := ir.NewDiagnostic(ir.ErrUnsupportedType, rec, member, format, args...)
	if rec == nil {
		d.TypeName = typeName
		d.Source = src
	}
	sink.Report(d)
}

// builtin maps Go basic type names to C++ builtins.
func builtin(name string) *ir.Type {
	switch name {
	case "bool":
		return ir.Bool()
	case "string":
		return ir.String()
	case "int":
		return ir.Int(0)
	case "int8":
		return ir.Int(8)
	case "int16":
		return ir.Int(16)
	case "int32", "rune":
		return ir.Int(32)
	case "int64":
		return ir.Int(64)
	case "uint", "uintptr":
		return ir.Uint(0)
	case "uint8", "byte":
		return ir.Uint(8)
	case "uint16":
		return ir.Uint(16)
	case "uint32":
		return ir.Uint(32)
	case "uint64":
		return ir.Uint(64)
	case "float32":
		return ir.Float(32)
	case "float64":
		return ir.Float(64)
	default:
		return nil
	}
}

// trimEnumPrefix strips the Go convention of prefixing constants with
// their type name. Scoped enums already qualify their enumerators.
func trimEnumPrefix(typeName, constName string) string {
	rest, ok := strings.CutPrefix(constName, typeName)
	if !ok || rest == "" || rest[0] < 'A' || rest[0] > 'Z' {
		return constName
	}
	return rest
}

// isFlagSet reports whether every value is zero or a power of two.
func isFlagSet(values []int64) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if v < 0 || v&(v-1) != 0 {
			return false
		}
	}
	return true
}
