// Package ir defines the intermediate representation shared by discovery
// providers, the binding graph, and the C++ emitter.
//
// A Type is an immutable identity for a discovered type. A Record aggregates
// everything known about one Type. A Table is the canonical arena of records
// produced by the merge step and consumed by resolution and emission.
package ir

import (
	"fmt"
	"strings"
)

// Type identifies a type by namespace path, name, generic arguments and kind.
//
// Types are immutable once created. Two Types denote the same entity iff
// their Key values are equal; generic instantiations share a name but differ
// by argument list, so the key includes the argument keys.
type Type struct {
	name      string
	namespace []string
	args      []*Type
	kind      Kind
	builtin   bool
	include   string
	key       string
}

// NewType returns a descriptor for a model type.
// It panics if any generic argument is nil.
func NewType(namespace []string, name string, kind Kind, args ...*Type) *Type {
	t := &Type{
		name:      name,
		namespace: append([]string(nil), namespace...),
		args:      append([]*Type(nil), args...),
		kind:      kind,
	}
	for i, a := range t.args {
		if a == nil {
			panic(fmt.Sprintf("ir: nil generic argument %d for %s", i, name))
		}
	}
	t.key = t.computeKey()
	return t
}

// Builtin returns a descriptor for a type spelled directly in C++, such as
// "int32_t" or "std::string". Include names the system header that declares
// it, or is empty for language keywords like "bool".
func Builtin(spelling, include string) *Type {
	t := &Type{
		name:    spelling,
		builtin: true,
		include: include,
	}
	t.key = "builtin:" + spelling
	return t
}

// Name returns the unqualified type name without generic arguments.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Namespace returns a copy of the namespace path.
func (t *Type) Namespace() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.namespace...)
}

// Kind returns the kind tag.
func (t *Type) Kind() Kind {
	if t == nil {
		return KindPlain
	}
	return t.kind
}

// GenericArguments returns a copy of the generic argument list.
func (t *Type) GenericArguments() []*Type {
	if t == nil {
		return nil
	}
	return append([]*Type(nil), t.args...)
}

// IsGeneric reports whether the type carries generic arguments.
func (t *Type) IsGeneric() bool {
	return t != nil && len(t.args) > 0
}

// IsBuiltin reports whether the type was created with Builtin.
func (t *Type) IsBuiltin() bool {
	return t != nil && t.builtin
}

// Key returns the identity key. Nil types have an empty key.
func (t *Type) Key() string {
	if t == nil {
		return ""
	}
	return t.key
}

func (t *Type) computeKey() string {
	var b strings.Builder
	b.WriteString(t.TemplateName())
	if len(t.args) > 0 {
		b.WriteByte('<')
		for i, a := range t.args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.Key())
		}
		b.WriteByte('>')
	}
	b.WriteByte('#')
	b.WriteString(t.kind.String())
	return b.String()
}

// CppNamespace returns the namespace path joined with "::".
func (t *Type) CppNamespace() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.namespace, "::")
}

// TemplateName returns the fully qualified name without generic arguments.
// For non-generic types this equals QualifiedName.
func (t *Type) TemplateName() string {
	if t == nil {
		return ""
	}
	if t.builtin || len(t.namespace) == 0 {
		return t.name
	}
	return t.CppNamespace() + "::" + t.name
}

// QualifiedName returns the fully qualified C++ spelling of the type,
// including generic arguments.
func (t *Type) QualifiedName() string {
	if t == nil {
		return ""
	}
	if len(t.args) == 0 {
		return t.TemplateName()
	}
	return t.TemplateName() + ArgumentList(t.args)
}

// ArgumentList renders "<A, B>" using the qualified names of args.
func ArgumentList(args []*Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.QualifiedName()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// HeaderPath returns the slash-separated path of the header that holds the
// definition of this type and of every other instantiation of the same
// generic type. Builtins have no header path.
func (t *Type) HeaderPath(ext string) string {
	if t == nil || t.builtin {
		return ""
	}
	if ext == "" {
		ext = ".h"
	}
	if len(t.namespace) == 0 {
		return t.name + ext
	}
	return strings.Join(t.namespace, "/") + "/" + t.name + ext
}

// Include returns the include identifier (including angle brackets) that
// provides the full definition of the type, or "" when none is needed.
func (t *Type) Include(ext string) string {
	if t == nil {
		return ""
	}
	if t.builtin {
		return t.include
	}
	return "<" + t.HeaderPath(ext) + ">"
}

// String returns the qualified name.
func (t *Type) String() string {
	return t.QualifiedName()
}
