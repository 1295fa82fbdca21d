package slot

import (
	"math"
	"strconv"
)

// Kind is the type of value a slot holds.
type Kind uint8

const (
	KindString Kind = iota + 1 // UTF-8 text
	KindNumber                 // IEEE 754 double
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is the content of one slot: either a string or a number.
// The zero Value is invalid and is rejected by every host.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// String creates a string slot value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a number slot value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value was created by String or Number.
func (v Value) IsValid() bool { return v.kind == KindString || v.kind == KindNumber }

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the number payload and whether the value is a number.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Int returns the value as a non-negative integer.
// The boolean is false for strings, fractions, negative numbers, NaN and infinities.
func (v Value) Int() (int, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if math.IsNaN(v.num) || math.IsInf(v.num, 0) || v.num < 0 || v.num != math.Trunc(v.num) || v.num > math.MaxInt32 {
		return 0, false
	}
	return int(v.num), true
}

// String renders the value for humans.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return "<invalid>"
	}
}

// Size returns the number of bytes the value occupies in a slot.
// Numbers are counted as 8 bytes.
func (v Value) Size() int {
	if v.kind == KindString {
		return len(v.str)
	}
	return 8
}
