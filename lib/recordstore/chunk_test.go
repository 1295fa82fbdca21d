package recordstore

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxBytes int
		want     []string
	}{
		{"empty", "", 10, nil},
		{"fits", "abc", 10, []string{"abc"}},
		{"exact", "abcd", 2, []string{"ab", "cd"}},
		{"remainder", "abcde", 2, []string{"ab", "cd", "e"}},
		{"record", `{"a":"hello"}`, 10, []string{`{"a":"hell`, `o"}`}},
		{"two byte boundary", "aé", 2, []string{"a", "é"}},
		{"three byte boundary", "ab日c", 4, []string{"ab", "日c"}},
		{"four byte boundary", "a😀b", 3, []string{"a", "😀", "b"}},
		{"code point larger than limit", "😀😀", 2, []string{"😀", "😀"}},
		{"zero limit", "aé", 0, []string{"a", "é"}},
		{"negative limit", "ab", -1, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.in, tt.maxBytes))
		})
	}
}

func TestChunkBoundarySafety(t *testing.T) {
	inputs := []string{
		`{"name":"Zoë","city":"Zürich"}`,
		"日本語のテキスト",
		"emoji 😀🎉👍🏽 and flags 🇩🇪",
		"combining é ä ô",
		strings.Repeat("ä€😀x", 50),
	}
	for _, in := range inputs {
		for maxBytes := 1; maxBytes <= 40; maxBytes++ {
			fragments := Chunk(in, maxBytes)

			var sb strings.Builder
			for _, f := range fragments {
				if !utf8.ValidString(f) {
					t.Fatalf("fragment %q of %q (max %d) is not valid UTF-8", f, in, maxBytes)
				}
				if len(f) > maxBytes && utf8.RuneCountInString(f) != 1 {
					t.Fatalf("fragment %q exceeds %d bytes", f, maxBytes)
				}
				if f == "" {
					t.Fatalf("empty fragment for %q (max %d)", in, maxBytes)
				}
				sb.WriteString(f)
			}
			if sb.String() != in {
				t.Fatalf("fragments of %q (max %d) do not reconstruct the input", in, maxBytes)
			}
		}
	}
}

func TestChunkMinimal(t *testing.T) {
	in := strings.Repeat("a", 100)
	assert.Len(t, Chunk(in, 10), 10)
	assert.Len(t, Chunk(in, 32767), 1)
	assert.Len(t, Chunk(in, 33), 4)
}
