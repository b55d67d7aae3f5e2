package parser

import "strings"

// NormalizeLines splits raw text into trimmed, non-empty lines in document order.
// No other transformation is applied.
func NormalizeLines(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		if line := strings.TrimSpace(field); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ContainsDigit reports whether s contains an ASCII digit
func ContainsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// lowerASCII lower-cases ASCII letters only, so byte offsets into the
// result are valid offsets into s.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
