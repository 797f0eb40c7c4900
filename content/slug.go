package content

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe identifier from a title: lowercase, keep only
// a-z, 0-9 and separators, turn whitespace runs into single hyphens, collapse
// repeated hyphens and trim them from both ends. It never fails; an empty
// title yields "".
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}
	return b.String()
}

// IsSlug reports whether s is already in the form Slugify produces.
func IsSlug(s string) bool {
	return s != "" && Slugify(s) == s
}
