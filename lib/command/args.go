package command

import "strings"

// ParseArguments splits a line into arguments.
//
// Spaces separate arguments unless they are inside double quotes. A double quote
// toggles quoting and is dropped, a backslash makes the next character literal and
// is dropped. Consecutive spaces yield empty arguments, a blank line yields none.
func ParseArguments(line string) []string {
	if line == "" {
		return nil
	}

	var (
		out     []string
		current strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			out = append(out, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(out, current.String())
}
