package jsonv

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// FromAny converts plain Go data into a Value.
// Supported are nil, bool, all integer and float types, string, json.Number,
// []any, []string, map[string]any (keys sorted) and Value itself.
func FromAny(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int8:
		return Number(t), nil
	case int16:
		return Number(t), nil
	case int32:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case uint:
		return Number(t), nil
	case uint8:
		return Number(t), nil
	case uint16:
		return Number(t), nil
	case uint32:
		return Number(t), nil
	case uint64:
		return Number(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return nil, fmt.Errorf("jsonv: invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case []string:
		arr := make(Array, len(t))
		for i, s := range t {
			arr[i] = String(s)
		}
		return arr, nil
	case []any:
		arr := make(Array, len(t))
		for i, e := range t {
			v, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			v, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("jsonv: unsupported type %T", x)
	}
}

// ToAny converts a Value into plain Go data (the inverse of FromAny).
// Objects become map[string]any and lose their key order.
func ToAny(v Value) any {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Number:
		return float64(t)
	case String:
		return string(t)
	case Array:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToAny(e)
		}
		return out
	case *Object:
		out := make(map[string]any, t.Len())
		for k, e := range t.All() {
			out[k] = ToAny(e)
		}
		return out
	default:
		return nil
	}
}

// ParseLiteral interprets user input: valid JSON is parsed, anything else
// becomes a String. Used by command line and chat front ends.
func ParseLiteral(text string) Value {
	if v, err := Parse(text); err == nil {
		return v
	}
	return String(text)
}
