package jsonv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrSyntax is returned by Parse for text that is not a single valid JSON value.
var ErrSyntax = errors.New("jsonv: invalid JSON")

// Parse decodes a single JSON value. Object key order is preserved,
// for duplicate keys the last value wins at the position of the first.
func Parse(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after value", ErrSyntax)
	}
	return v, nil
}

// ParseObject decodes text and requires the top level value to be an object.
func ParseObject(text string) (*Object, error) {
	v, err := Parse(text)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrSyntax, v.Kind())
	}
	return obj, nil
}

func parseValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, fmt.Errorf("%w: number %s: %v", ErrSyntax, t, err)
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				e, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, e)
			}
			if err := expectDelim(dec, ']'); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("%w: object key is not a string", ErrSyntax)
				}
				e, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, e)
			}
			if err := expectDelim(dec, '}'); err != nil {
				return nil, err
			}
			return obj, nil
		}
	}
	return nil, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q", ErrSyntax, want)
	}
	return nil
}
