// Package slug builds URL-safe identifiers for public detail pages.
package slug

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Make lowercases s and collapses every non-alphanumeric run into a single
// hyphen.
func Make(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Unique appends a short random suffix so concurrent inserts with the same
// title cannot collide on the unique slug column.
func Unique(s string) string {
	base := Make(s)
	suffix := strings.Split(uuid.NewString(), "-")[0]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
