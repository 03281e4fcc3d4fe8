package sanitizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// StripInvisible normalizes content to NFKC form and removes invisible and
// potentially malicious Unicode characters. Returns the cleaned content and
// the number of characters removed. Enabled via config; it runs before rule
// application so hidden payloads cannot dodge the patterns.
func StripInvisible(content string) (string, int) {
	normalized := norm.NFKC.String(content)

	var b strings.Builder
	b.Grow(len(normalized))

	removed := 0
	for _, r := range normalized {
		if shouldRemove(r) {
			removed++
			continue
		}
		b.WriteRune(r)
	}

	return b.String(), removed
}

// shouldRemove returns true for characters that should be stripped.
// Removes Unicode categories Cf (format), Co (private use), and Cc (control),
// except for common whitespace characters.
func shouldRemove(r rune) bool {
	// Keep common whitespace.
	if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
		return false
	}

	return unicode.In(r,
		unicode.Cf, // Format (zero-width joiners, directional marks, etc.)
		unicode.Co, // Private use
		unicode.Cc, // Control
	)
}
