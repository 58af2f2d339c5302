// Package email derives display values from e-mail addresses.
package email

import (
	"strings"
	"unicode"
)

// DisplayName guesses a person's name from the local part of addr, so
// "jan.de-vries@example.nl" becomes "Jan De Vries". Returns "" when the local
// part has no usable segments.
func DisplayName(addr string) string {
	localPart := addr
	if at := strings.IndexByte(addr, '@'); at >= 0 {
		localPart = addr[:at]
	}
	// Drop sub-addressing such as jan+avg@example.nl.
	localPart, _, _ = strings.Cut(localPart, "+")

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
