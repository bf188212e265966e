package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeObjectID trims and lowercases a hex object ID so lookups and
// lock keys are case-insensitive.
func NormalizeObjectID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// NormalizeOwnerID trims surrounding whitespace. Owner identifiers are
// opaque and otherwise preserved as given.
func NormalizeOwnerID(owner string) string {
	return strings.TrimSpace(owner)
}

// NormalizeActor trims the actor header value used for audit attribution.
func NormalizeActor(actor string) string {
	return TrimAndNormalize(actor)
}
