package jsonv

import "iter"

// Object is a JSON object that keeps its keys in insertion order.
// Overwriting a key keeps its position, deleting a key removes it.
// The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values []Value
	index  map[string]int
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.values[i], true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.index[key]
	return ok
}

// Set stores value under key. A nil value is stored as Null.
func (o *Object) Set(key string, value Value) {
	if value == nil {
		value = Null{}
	}
	if i, ok := o.index[key]; ok {
		o.values[i] = value
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	delete(o.index, key)
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.values = append(o.values[:i], o.values[i+1:]...)
	for j := i; j < len(o.keys); j++ {
		o.index[o.keys[j]] = j
	}
	return true
}

// Clear removes all keys.
func (o *Object) Clear() {
	o.keys = nil
	o.values = nil
	o.index = nil
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Values returns a copy of the values in insertion order.
func (o *Object) Values() []Value {
	return append([]Value(nil), o.values...)
}

// Range calls fn for every entry in insertion order until fn returns false.
// fn must not modify the object.
func (o *Object) Range(fn func(key string, value Value) bool) {
	for i, k := range o.keys {
		if !fn(k, o.values[i]) {
			return
		}
	}
}

// All returns an iterator over all entries in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return o.Range
}
