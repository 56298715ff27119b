package logging

import (
	"strings"
	"unicode"
)

// MaskEmail hides the local part of an address except its first and last
// character. Extracted addresses are logged masked unless debug is on.
//
//	"jane.doe@widgetco.io" -> "j******e@widgetco.io"
//	"ab@x.io"              -> "a*@x.io"
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return maskToken(email)
	}
	return maskToken(email[:at]) + email[at:]
}

// MaskPhone replaces every digit but the last four with '*', keeping
// separators. Numbers of four digits or fewer keep only the last one.
//
//	"+91 9876543210" -> "+** ******3210"
func MaskPhone(phone string) string {
	runes := []rune(strings.TrimSpace(phone))

	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	keep := 4
	if digits <= 4 {
		keep = 1
	}

	seen := 0
	for i := len(runes) - 1; i >= 0; i-- {
		if !unicode.IsDigit(runes[i]) {
			continue
		}
		seen++
		if seen > keep {
			runes[i] = '*'
		}
	}
	return string(runes)
}

// MaskAll applies mask to every value.
func MaskAll(values []string, mask func(string) string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = mask(v)
	}
	return out
}

func maskToken(s string) string {
	runes := []rune(s)
	switch n := len(runes); {
	case n <= 1:
		return s
	case n == 2:
		return string(runes[0]) + "*"
	default:
		return string(runes[0]) + strings.Repeat("*", n-2) + string(runes[n-1])
	}
}
