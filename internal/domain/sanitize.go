package domain

import (
	"html"
	"strings"
)

// textReplacer removes embedded newlines in both the literal and the
// two-character escaped form the provider sometimes emits inside JSON strings.
var textReplacer = strings.NewReplacer("\\n", "", "\n", "", "\r", "")

// Sanitize normalizes a provider-supplied text field: HTML entities (named and
// numeric) are decoded, embedded newlines removed, surrounding whitespace
// trimmed. Every text field sourced from the API passes through here.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = textReplacer.Replace(s)
	return strings.TrimSpace(s)
}
