package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleName upper-cases every letter run that follows a non-letter and lower-cases the rest,
// so "1password-password-manager" becomes "1Password-Password-Manager".
func titleName(s string) string {
	titler := cases.Title(language.Und)
	var b strings.Builder
	b.Grow(len(s))
	start := 0
	inLetters := false
	for i, r := range s {
		isLetter := unicode.IsLetter(r)
		switch {
		case isLetter && !inLetters:
			b.WriteString(s[start:i])
			start = i
		case !isLetter && inLetters:
			b.WriteString(titler.String(s[start:i]))
			start = i
		}
		inLetters = isLetter
	}
	if inLetters {
		b.WriteString(titler.String(s[start:]))
	} else {
		b.WriteString(s[start:])
	}
	return b.String()
}

// trimComPrefix drops the reverse-DNS "com." head that most Play packages carry.
func trimComPrefix(pkg string) string {
	if rest, ok := strings.CutPrefix(pkg, "com."); ok && rest != "" {
		return rest
	}
	return pkg
}
