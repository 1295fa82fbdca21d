package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"quoted space", `set name "John Doe"`, []string{"set", "name", "John Doe"}},
		{"blank", "", nil},
		{"single", "help", []string{"help"}},
		{"double space keeps empty token", "a  b", []string{"a", "", "b"}},
		{"trailing space", "a ", []string{"a", ""}},
		{"escaped quote", `say \"hi\"`, []string{"say", `"hi"`}},
		{"escaped space", `my\ name x`, []string{"my name", "x"}},
		{"escaped backslash", `a\\b`, []string{`a\b`}},
		{"quotes inside word", `ab"c d"e`, []string{"abc de"}},
		{"unterminated quote", `"open quote`, []string{"open quote"}},
		{"empty quotes", `"" x`, []string{"", "x"}},
		{"unicode", `ä "ö ü"`, []string{"ä", "ö ü"}},
		{"trailing backslash dropped", `a\`, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseArguments(tt.in))
		})
	}
}
