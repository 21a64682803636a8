package ir

import "strconv"

// System includes referenced by builtin types.
const (
	IncludeCstdint = "<cstdint>"
	IncludeString  = "<string>"
)

// Void returns the builtin void type.
func Void() *Type { return Builtin("void", "") }

// Bool returns the builtin bool type.
func Bool() *Type { return Builtin("bool", "") }

// Int returns a fixed-width signed integer type.
// BitSize 0 selects the pointer-sized 64-bit integer that matches Go's int.
func Int(bitSize int) *Type {
	return Builtin("int"+strconv.Itoa(normalizeBits(bitSize))+"_t", IncludeCstdint)
}

// Uint returns a fixed-width unsigned integer type.
func Uint(bitSize int) *Type {
	return Builtin("uint"+strconv.Itoa(normalizeBits(bitSize))+"_t", IncludeCstdint)
}

// Float returns float for 32 bits and double otherwise.
func Float(bitSize int) *Type {
	if bitSize == 32 {
		return Builtin("float", "")
	}
	return Builtin("double", "")
}

// String returns std::string.
func String() *Type { return Builtin("std::string", IncludeString) }

func normalizeBits(bitSize int) int {
	switch bitSize {
	case 8, 16, 32, 64:
		return bitSize
	default:
		return 64
	}
}
