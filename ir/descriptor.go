package ir

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind classifies how a type is represented on the C++ side.
// The set is closed; any other value is an unknown kind and is rejected
// by emitters.
type Kind int

const (
	KindPlain        Kind = iota // Aggregate emitted as a struct
	KindClassWrapper             // Wraps an opaque handle to a managed object
	KindDelegate                 // Callable wrapper
	KindEnum                     // Strongly scoped enumeration
	KindEnumFlags                // Unscoped bit-flag enumeration with a fixed 32-bit underlying type
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "Plain"
	case KindClassWrapper:
		return "ClassWrapper"
	case KindDelegate:
		return "Delegate"
	case KindEnum:
		return "Enum"
	case KindEnumFlags:
		return "EnumFlags"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindPlain && k <= KindEnumFlags
}

// IsEnum reports whether members of this kind are enumerators.
func (k Kind) IsEnum() bool {
	return k == KindEnum || k == KindEnumFlags
}

// ParseKind parses a kind tag as written in manifests and directives.
// Matching is case-insensitive; "struct" and "class" are accepted as
// aliases for Plain and ClassWrapper.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain", "struct":
		return KindPlain, nil
	case "classwrapper", "class", "wrapper":
		return KindClassWrapper, nil
	case "delegate":
		return KindDelegate, nil
	case "enum":
		return KindEnum, nil
	case "enumflags", "flags":
		return KindEnumFlags, nil
	default:
		return Kind(-1), errors.Mark(errors.Newf("unknown kind tag %q", s), ErrUnknownKind)
	}
}
