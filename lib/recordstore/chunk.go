package recordstore

import "unicode/utf8"

// Chunk splits s into the fewest fragments of at most maxBytes UTF-8 bytes each,
// without splitting a code point. Concatenating the fragments yields s again.
//
// A code point longer than maxBytes (every code point when maxBytes <= 0) is emitted
// whole as its own fragment, so such a fragment may exceed maxBytes.
// An empty string yields no fragments.
func Chunk(s string, maxBytes int) []string {
	var fragments []string
	for len(s) > 0 {
		cut := min(len(s), max(maxBytes, 0))

		// walk back onto a code point boundary
		for cut > 0 && cut < len(s) && isContinuation(s[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(s)
		}

		fragments = append(fragments, s[:cut])
		s = s[cut:]
	}
	return fragments
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}
