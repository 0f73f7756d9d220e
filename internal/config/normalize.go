package config

import (
	"strings"
	"unicode"

	"github.com/pspoerri/atlas-composer/internal/projection"
)

// NormalizeProjectionID maps an internal projection type name to a
// canonical registry id: a conventional "geo" prefix is stripped, camelCase
// is converted to kebab-case, and the result is matched against the
// registry. This reverse mapping is inherently lossy for custom or
// anonymous factories, so an unmatched name degrades to the kebab-cased
// guess instead of failing.
func NormalizeProjectionID(name string, reg *projection.Registry) string {
	stripped := strings.TrimPrefix(strings.TrimPrefix(name, "geo"), "Geo")
	guess := kebabCase(stripped)
	if reg != nil && reg.Has(guess) {
		return guess
	}
	// Some factories name equal-area projections without the hyphenated
	// suffix; try the registry ids as loose matches.
	if reg != nil {
		flat := strings.ReplaceAll(guess, "-", "")
		for _, id := range reg.IDs() {
			if strings.ReplaceAll(id, "-", "") == flat {
				return id
			}
		}
	}
	return guess
}

func kebabCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
