package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	textCharsRe  = regexp.MustCompile(`[^\w\s\-\.\,\(\)\/]`)
	addrCharsRe  = regexp.MustCompile(`[^\w\s\-\.\,\(\)\/\#]`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// SanitizeText normalizes a free-text name field: collapses whitespace,
// strips characters outside the allowed set, and title-cases the result.
func SanitizeText(text string) string {
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	text = textCharsRe.ReplaceAllString(text, "")
	return titleCase(text)
}

// SanitizeAddressComponent normalizes one address component,
// additionally allowing '#' for house numbers.
func SanitizeAddressComponent(component string) string {
	component = whitespaceRe.ReplaceAllString(strings.TrimSpace(component), " ")
	component = addrCharsRe.ReplaceAllString(component, "")
	return titleCase(component)
}

// ValidateEmail checks the email address format
func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
