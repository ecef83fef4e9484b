package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// multipleSpaces matches any sequence of whitespace (including newlines).
var multipleSpaces = regexp.MustCompile(`\s+`)

// CompressAllWhitespace replaces all whitespace sequences (including newlines) with a single space.
func CompressAllWhitespace(s string) string {
	return strings.TrimSpace(multipleSpaces.ReplaceAllString(s, " "))
}

// TruncateRunes returns the first n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= n {
		return s
	}

	return string([]rune(s)[:n])
}
