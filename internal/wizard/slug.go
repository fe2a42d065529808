package wizard

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// DeriveID turns a display name into a plugin identifier made of lowercase
// ASCII letters, digits and single dashes, with no leading or trailing dash.
func DeriveID(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range lower.String(name) {
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
		// anything else is dropped without breaking the current word
	}
	return b.String()
}
