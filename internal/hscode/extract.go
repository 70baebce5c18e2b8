package hscode

import (
	"regexp"
	"strings"
)

// candidatePattern matches a whole run of 6, 8 or 10 digits.
var candidatePattern = regexp.MustCompile(`\b\d{6}(?:\d{2}){0,2}\b`)

// Extract returns the first 6-, 8- or 10-digit run in text and true. When no
// such run exists it returns the trimmed text and false, so the caller can
// still feed it to the Formatter.
func Extract(text string) (string, bool) {
	if m := candidatePattern.FindString(text); m != "" {
		return m, true
	}
	return strings.TrimSpace(text), false
}
