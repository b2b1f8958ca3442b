// Package mapping proposes field mappings for carrier CSV headers and scores them.
package mapping

import "strings"

// NormalizeHeader lower-cases h and drops everything outside [a-z0-9].
// The result is only a matching key; the raw header is what gets mapped.
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
