package ir

// RefMode describes how a member refers to its type.
type RefMode int

const (
	ByValue        RefMode = iota // Embedded by value; needs the full definition
	Pointer                       // T*
	Reference                     // T&
	ConstReference                // const T&
)

// String returns the string representation of the mode.
func (m RefMode) String() string {
	switch m {
	case ByValue:
		return "Value"
	case Pointer:
		return "Pointer"
	case Reference:
		return "Reference"
	case ConstReference:
		return "ConstReference"
	default:
		return "Unknown"
	}
}

// TypeRef is a use of a type by a member or parameter.
// A zero TypeRef (nil Type) denotes void.
type TypeRef struct {
	Type *Type
	Mode RefMode
}

// Value returns a by-value reference to t.
func Value(t *Type) TypeRef { return TypeRef{Type: t, Mode: ByValue} }

// Ptr returns a pointer reference to t.
func Ptr(t *Type) TypeRef { return TypeRef{Type: t, Mode: Pointer} }

// Ref returns a reference to t.
func Ref(t *Type) TypeRef { return TypeRef{Type: t, Mode: Reference} }

// ConstRef returns a const reference to t.
func ConstRef(t *Type) TypeRef { return TypeRef{Type: t, Mode: ConstReference} }

// IsVoid reports whether the reference has no type.
func (r TypeRef) IsVoid() bool { return r.Type == nil }

// NeedsDefinition reports whether the use requires the complete type.
func (r TypeRef) NeedsDefinition() bool { return r.Type != nil && r.Mode == ByValue }

// Key returns an identity string combining the type key and the mode.
func (r TypeRef) Key() string {
	if r.Type == nil {
		return "void"
	}
	switch r.Mode {
	case Pointer:
		return r.Type.Key() + "*"
	case Reference:
		return r.Type.Key() + "&"
	case ConstReference:
		return "const " + r.Type.Key() + "&"
	default:
		return r.Type.Key()
	}
}
