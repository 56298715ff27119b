package contacts

import (
	"regexp"
	"sort"
)

// Compiled patterns, applied to normalized text.
var (
	// emailPattern matches local-part@domain.tld shaped tokens.
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// mobilePattern captures digit runs, optionally behind a +91/91 country
	// code. The run itself is validated afterwards by isMobile.
	mobilePattern = regexp.MustCompile(`(?:\+?91[- ]?)?(\d{10,})`)

	// landlinePattern matches a trunk prefix 0, a 2-4 digit area code, an
	// optional separator and a 6-8 digit subscriber number.
	landlinePattern = regexp.MustCompile(`\b0\d{2,4}[- ]?\d{6,8}\b`)

	// phonePattern is the permissive variant: any standalone 10 digit run
	// with an optional international prefix and no leading-digit rule. The
	// prefix may be glued to the number, as in +919876543210.
	phonePattern = regexp.MustCompile(`(?:^|\W)((?:\+\d{1,3}[- ]?)?\d{10})\b`)
)

// MobileLength is the number of digits in a valid mobile number.
const MobileLength = 10

// FindEmails returns the distinct email addresses in text, sorted.
func FindEmails(text string) []string {
	return uniqueSorted(emailPattern.FindAllString(text, -1))
}

// FindMobiles returns the distinct 10 digit mobile numbers in text whose
// leading digit is 6, 7, 8 or 9, sorted. Country-code prefixes are dropped.
func FindMobiles(text string) []string {
	var found []string
	for _, m := range mobilePattern.FindAllStringSubmatch(text, -1) {
		if isMobile(m[1]) {
			found = append(found, m[1])
		}
	}
	return uniqueSorted(found)
}

// FindLandlines returns the distinct landline-shaped numbers in text, sorted.
func FindLandlines(text string) []string {
	return uniqueSorted(landlinePattern.FindAllString(text, -1))
}

// FindPhones returns the distinct permissive phone matches in text, sorted.
func FindPhones(text string) []string {
	var found []string
	for _, m := range phonePattern.FindAllStringSubmatch(text, -1) {
		found = append(found, m[1])
	}
	return uniqueSorted(found)
}

func isMobile(digits string) bool {
	if len(digits) != MobileLength {
		return false
	}
	switch digits[0] {
	case '6', '7', '8', '9':
		return true
	default:
		return false
	}
}

// uniqueSorted returns the distinct values of in, ascending. The result is
// never nil so it serializes as an empty JSON array.
func uniqueSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
