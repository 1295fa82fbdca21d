package jsonv

// Kind identifies the concrete type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value. The set of implementations is closed:
// Null, Bool, Number, String, Array and *Object.
type Value interface {
	Kind() Kind
	jsonValue()
}

type (
	// Null is the JSON null literal.
	Null struct{}
	// Bool is a JSON boolean.
	Bool bool
	// Number is a JSON number (IEEE 754 double).
	Number float64
	// String is a JSON string.
	String string
	// Array is an ordered JSON array.
	Array []Value
)

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) jsonValue()    {}
func (Bool) jsonValue()    {}
func (Number) jsonValue()  {}
func (String) jsonValue()  {}
func (Array) jsonValue()   {}
func (*Object) jsonValue() {}

// Equal reports whether a and b are deeply equal.
// Object comparison ignores key order, nil is treated as Null.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		for k, v := range av.All() {
			other, ok := bv.Get(k)
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	}
	return false
}
