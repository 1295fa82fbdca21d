package jsonv

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("b", Number(1))
	obj.Set("a", Number(2))
	obj.Set("c", Number(3))

	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())

	// overwriting keeps the position
	obj.Set("b", String("x"))
	assert.Equal(t, []string{"b", "a", "c"}, obj.Keys())
	v, ok := obj.Get("b")
	require.True(t, ok)
	assert.Equal(t, String("x"), v)

	// deleting removes the key, re-adding appends it
	assert.True(t, obj.Delete("b"))
	assert.False(t, obj.Delete("b"))
	assert.False(t, obj.Has("b"))
	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	v, _ = obj.Get("c")
	assert.Equal(t, Number(3), v)

	obj.Set("b", Null{})
	assert.Equal(t, []string{"a", "c", "b"}, obj.Keys())
	assert.Equal(t, `{"a":2,"c":3,"b":null}`, Marshal(obj))

	var seen []string
	for k := range obj.All() {
		seen = append(seen, k)
		if k == "c" {
			break
		}
	}
	assert.Equal(t, []string{"a", "c"}, seen)

	obj.Clear()
	assert.Equal(t, 0, obj.Len())
	assert.Equal(t, "{}", Marshal(obj))
}

func TestZeroObject(t *testing.T) {
	var obj Object
	_, ok := obj.Get("missing")
	assert.False(t, ok)
	obj.Set("k", nil)
	v, _ := obj.Get("k")
	assert.Equal(t, Null{}, v)
}

func TestMarshalNumbers(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-42, "-42"},
		{0.1, "0.1"},
		{123.456, "123.456"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e300, "1.5e+300"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{5e-324, "5e-324"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Marshal(Number(tt.in)))
		})
	}
}

func TestMarshalStrings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", `"hello"`},
		{"html is not escaped", "<a>&</a>", `"<a>&</a>"`},
		{"quotes and backslash", `say "hi" \o/`, `"say \"hi\" \\o/"`},
		{"control characters", "a\nb\tc\x01", `"a\nb\tc\u0001"`},
		{"multi byte", "héllo 日本 😀", `"héllo 日本 😀"`},
		{"line separator stays raw", "a\u2028b", "\"a\u2028b\""},
		{"invalid utf8 replaced", "a\xffb", "\"a\ufffdb\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Marshal(String(tt.in)))
		})
	}
}

func TestMarshalNested(t *testing.T) {
	inner := NewObject()
	inner.Set("ok", Bool(true))
	obj := NewObject()
	obj.Set("list", Array{Number(1), String("two"), Null{}, inner})
	obj.Set("empty", Array{})

	assert.Equal(t, `{"list":[1,"two",null,{"ok":true}],"empty":[]}`, Marshal(obj))
	assert.Equal(t, "null", Marshal(nil))
}

func TestParse(t *testing.T) {
	v, err := Parse(` {"z": 1, "a": [true, false, null, "s", 2.5e3], "m": {"x": {}}} `)
	require.NoError(t, err)

	obj, ok := v.(*Object)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())

	a, _ := obj.Get("a")
	assert.Equal(t, Array{Bool(true), Bool(false), Null{}, String("s"), Number(2500)}, a)

	// round trip keeps order and content
	assert.Equal(t, `{"z":1,"a":[true,false,null,"s",2500],"m":{"x":{}}}`, Marshal(v))
}

func TestParseDuplicateKeys(t *testing.T) {
	obj, err := ParseObject(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	v, _ := obj.Get("a")
	assert.Equal(t, Number(3), v)
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"{",
		`{"a":}`,
		`{"a" 1}`,
		`[1 2]`,
		`{} {}`,
		`{"a":1} x`,
		`{'a':1}`,
		`undefined`,
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}

	_, err := ParseObject(`[1,2]`)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseScalars(t *testing.T) {
	v, err := Parse(`"text"`)
	require.NoError(t, err)
	assert.Equal(t, String("text"), v)

	v, err = Parse(`-0.5`)
	require.NoError(t, err)
	assert.Equal(t, Number(-0.5), v)

	v, err = Parse(`"\u00e9\ud83d\ude00"`)
	require.NoError(t, err)
	assert.Equal(t, String("é😀"), v)
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"b":    []any{1, "x", nil},
		"a":    true,
		"n":    json.Number("7"),
		"tags": []string{"p", "q"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":true,"b":[1,"x",null],"n":7,"tags":["p","q"]}`, Marshal(v))

	_, err = FromAny(struct{}{})
	assert.Error(t, err)

	back := ToAny(v).(map[string]any)
	assert.Equal(t, true, back["a"])
	assert.Equal(t, []any{float64(1), "x", nil}, back["b"])
}

func TestEqual(t *testing.T) {
	a, _ := Parse(`{"x":1,"y":[1,{"z":null}]}`)
	b, _ := Parse(`{"y":[1,{"z":null}],"x":1}`)
	c, _ := Parse(`{"x":1,"y":[1,{"z":false}]}`)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.True(t, Equal(nil, Null{}))
	assert.False(t, Equal(Number(1), String("1")))
}

func TestParseLiteral(t *testing.T) {
	assert.Equal(t, Number(42), ParseLiteral("42"))
	assert.Equal(t, String("John Doe"), ParseLiteral("John Doe"))
	assert.Equal(t, String("they/them"), ParseLiteral(`"they/them"`))
	assert.Equal(t, KindObject, ParseLiteral(`{"a":1}`).Kind())
}
