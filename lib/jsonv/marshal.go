package jsonv

import (
	"math"
	"strconv"
	"unicode/utf8"
)

const hex = "0123456789abcdef"

// Marshal returns the compact JSON text of v. A nil value marshals as null.
func Marshal(v Value) string {
	return string(AppendMarshal(nil, v))
}

// AppendMarshal appends the compact JSON text of v to buf.
func AppendMarshal(buf []byte, v Value) []byte {
	switch tv := v.(type) {
	case nil, Null:
		return append(buf, "null"...)
	case Bool:
		return strconv.AppendBool(buf, bool(tv))
	case Number:
		return appendNumber(buf, float64(tv))
	case String:
		return appendString(buf, string(tv))
	case Array:
		buf = append(buf, '[')
		for i, e := range tv {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = AppendMarshal(buf, e)
		}
		return append(buf, ']')
	case *Object:
		buf = append(buf, '{')
		for i, k := range tv.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, k)
			buf = append(buf, ':')
			buf = AppendMarshal(buf, tv.values[i])
		}
		return append(buf, '}')
	}
	return append(buf, "null"...)
}

// appendNumber formats f the way ECMAScript Number#toString does
func appendNumber(buf []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(buf, "null"...)
	}
	if f == 0 {
		// covers negative zero
		return append(buf, '0')
	}

	format := byte('f')
	if abs := math.Abs(f); abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	buf = strconv.AppendFloat(buf, f, format, -1, 64)
	if format == 'e' {
		// 1e-07 => 1e-7
		n := len(buf)
		if n >= 4 && buf[n-4] == 'e' && buf[n-3] == '-' && buf[n-2] == '0' {
			buf[n-2] = buf[n-1]
			buf = buf[:n-1]
		}
	}
	return buf
}

// appendString quotes s, escaping only what JSON requires
func appendString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	start := 0
	for i := 0; i < len(s); {
		b := s[i]
		if b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			buf = append(buf, s[start:i]...)
			switch b {
			case '"', '\\':
				buf = append(buf, '\\', b)
			case '\b':
				buf = append(buf, '\\', 'b')
			case '\f':
				buf = append(buf, '\\', 'f')
			case '\n':
				buf = append(buf, '\\', 'n')
			case '\r':
				buf = append(buf, '\\', 'r')
			case '\t':
				buf = append(buf, '\\', 't')
			default:
				buf = append(buf, '\\', 'u', '0', '0', hex[b>>4], hex[b&0xF])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, s[start:i]...)
			buf = append(buf, "\ufffd"...)
			i += size
			start = i
			continue
		}
		i += size
	}
	buf = append(buf, s[start:]...)
	return append(buf, '"')
}
