// Package value defines the VM's tagged Value union and its heap of
// reference-counted-free Obj instances.
package value

import "fmt"

// Type tags a Value's variant.
type Type int

const (
	Number Type = iota
	Bool
	Nil
	Object
)

// Value is a small tagged union. Number, Bool and Nil are carried inline;
// Object carries a Handle into a Heap, never a raw pointer, so values stay
// copyable and comparable.
type Value struct {
	Type   Type
	Num    float64
	Flag   bool
	Handle Handle
}

func NewNumber(n float64) Value { return Value{Type: Number, Num: n} }
func NewBool(b bool) Value      { return Value{Type: Bool, Flag: b} }
func NewNil() Value             { return Value{Type: Nil} }
func NewObject(h Handle) Value  { return Value{Type: Object, Handle: h} }

// IsString reports whether v is a heap String, given the heap it lives in.
func (v Value) IsString(h *Heap) bool {
	return v.Type == Object && h.Kind(v.Handle) == KindString
}

// Truthy implements the VM's notion of truthiness: Nil is false, Bool is
// itself, Number is true iff non-zero, Object is always true.
func (v Value) Truthy() bool {
	switch v.Type {
	case Nil:
		return false
	case Bool:
		return v.Flag
	case Number:
		return v.Num != 0
	case Object:
		return true
	default:
		return false
	}
}

// Equal compares two values structurally. Cross-variant comparisons are
// always false; Object equality compares the referenced Obj's contents,
// not handle identity.
func Equal(a, b Value, h *Heap) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case Number:
		return a.Num == b.Num
	case Bool:
		return a.Flag == b.Flag
	case Nil:
		return true
	case Object:
		return h.Equal(a.Handle, b.Handle)
	default:
		return false
	}
}

// Print renders v the way PRINT writes it to the output sink.
func Print(v Value, h *Heap) string {
	switch v.Type {
	case Number:
		return formatNumber(v.Num)
	case Bool:
		return fmt.Sprintf("%t", v.Flag)
	case Nil:
		return "nil"
	case Object:
		return h.String(v.Handle)
	default:
		return "?"
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
