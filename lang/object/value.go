// Package object implements the runtime value and heap-object model shared
// by the compiler and the virtual machine: the tagged Value sum, the
// interned String type, the other heap object variants (Function, Native,
// Closure, Upvalue, Class, Instance, BoundMethod), the bytecode Chunk they
// carry, and the mark-sweep garbage collector that reclaims them.
package object

import "strconv"

// Value is the tagged sum of every kind of value the machine manipulates:
// Bool, Nil, Number, or a heap Object (String, Function, Closure, ...).
// Equality of two Values requires the same dynamic type and, for heap
// objects, the same identity - strings compare equal by pointer because all
// strings are interned.
type Value interface {
	// String returns the value's textual representation, as printed by the
	// PRINT instruction.
	String() string
	// Type returns a short name for the value's runtime type, used in error
	// messages.
	Type() string
}

// Bool is the boolean Value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Type() string { return "bool" }

// nilValue is the unit value. Nil is its sole instance.
type nilValue struct{}

func (nilValue) String() string { return "nil" }
func (nilValue) Type() string   { return "nil" }

// Nil is the singleton unit value.
var Nil Value = nilValue{}

// Number is the double-precision numeric Value; the language has no
// separate integer type.
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (n Number) Type() string   { return "number" }

// Truthy reports the truthiness of v: Nil and Bool(false) are falsy,
// everything else - including 0 and the empty string - is truthy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nilValue:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal reports whether a and b are equal under the language's equality
// semantics: same dynamic type and payload, with heap objects compared by
// identity (safe for String because all strings are interned).
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case nilValue:
		_, ok := b.(nilValue)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case *String:
		bs, ok := b.(*String)
		return ok && a == bs
	default:
		return a == b
	}
}
