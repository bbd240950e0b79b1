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

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeID trims an opaque identifier. Ids never contain whitespace, so
// anything with inner spaces is returned as-is for the validator to reject.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}

// NormalizePlate upper-cases a licence plate and drops spaces and dashes:
// "ab-123 cd" becomes "AB123CD".
func NormalizePlate(plate string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return unicode.ToUpper(r)
	}, plate)
}

func NormalizeLabel(label string) string {
	return strings.ToLower(TrimAndNormalize(label))
}
