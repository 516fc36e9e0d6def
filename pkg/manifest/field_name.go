package manifest

import (
	"strings"
	"unicode"
)

// fieldName canonicalizes a manifest mapping key so that "BodyColor",
// "body-color" and "body color" all name the same field "body_color".
func fieldName(s string) string {
	runes := []rune(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	pendingSep := false
	flush := func() {
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					pendingSep = true
				}
			}
			flush()
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r), unicode.IsDigit(r):
			flush()
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	return b.String()
}
