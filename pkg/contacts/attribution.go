package contacts

import (
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
)

// PersonMatch selects how a line is compared against the username token.
type PersonMatch string

const (
	// PersonMatchExact looks for the token as a substring of the lowercased
	// line. "John Carter" does not match the token "johncarter".
	PersonMatchExact PersonMatch = "exact"
	// PersonMatchCompact strips every non-letter from the lowercased line
	// before the substring test, so "John Carter" matches "johncarter".
	PersonMatchCompact PersonMatch = "compact"
)

// CompanyKeyword selects how the company keyword is derived from the domain.
type CompanyKeyword string

const (
	// CompanyKeywordFirstLabel uses the text before the first '.' of the domain.
	CompanyKeywordFirstLabel CompanyKeyword = "first-label"
	// CompanyKeywordRegistrable uses the first label of the registrable
	// domain, so mail.acme.co.uk yields "acme".
	CompanyKeywordRegistrable CompanyKeyword = "registrable"
)

// DefaultMinTokenLength is the shortest username token or domain keyword
// that is allowed to drive a line search.
const DefaultMinTokenLength = 3

// AttributionOptions tunes the name and company heuristics.
type AttributionOptions struct {
	PersonMatch    PersonMatch
	CompanyKeyword CompanyKeyword
	MinTokenLength int
}

// DefaultAttributionOptions returns the behavior of the plain heuristics.
func DefaultAttributionOptions() AttributionOptions {
	return AttributionOptions{
		PersonMatch:    PersonMatchExact,
		CompanyKeyword: CompanyKeywordFirstLabel,
		MinTokenLength: DefaultMinTokenLength,
	}
}

// Attributor maps a primary email to the lines of a document most likely to
// hold the owner's name and employer. It never fails; misses are "".
type Attributor struct {
	opts AttributionOptions
}

// NewAttributor creates an Attributor. Zero-valued options fall back to defaults.
func NewAttributor(opts AttributionOptions) *Attributor {
	def := DefaultAttributionOptions()
	if opts.PersonMatch == "" {
		opts.PersonMatch = def.PersonMatch
	}
	if opts.CompanyKeyword == "" {
		opts.CompanyKeyword = def.CompanyKeyword
	}
	if opts.MinTokenLength <= 0 {
		opts.MinTokenLength = def.MinTokenLength
	}
	return &Attributor{opts: opts}
}

// Options returns the effective options.
func (a *Attributor) Options() AttributionOptions {
	return a.opts
}

// PersonName returns the first line of lines that looks like the name of the
// person behind email, or "" when the username token is too short or no
// line qualifies.
func (a *Attributor) PersonName(email string, lines []string) string {
	token := UsernameToken(email)
	if len(token) < a.opts.MinTokenLength {
		return ""
	}

	for _, line := range lines {
		if !isNameCandidate(line) {
			continue
		}
		haystack := strings.ToLower(line)
		if a.opts.PersonMatch == PersonMatchCompact {
			haystack = lettersOnly(haystack)
		}
		if strings.Contains(haystack, token) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// CompanyName returns the first line of lines mentioning the domain keyword
// of email, or "" when the keyword is too short or no line qualifies.
func (a *Attributor) CompanyName(email string, lines []string) string {
	keyword := a.companyKeyword(email)
	if len(keyword) < a.opts.MinTokenLength {
		return ""
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "@") || strings.Contains(lower, "http") {
			continue
		}
		if strings.Contains(lower, keyword) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func (a *Attributor) companyKeyword(email string) string {
	if a.opts.CompanyKeyword == CompanyKeywordRegistrable {
		if kw := RegistrableKeyword(email); kw != "" {
			return kw
		}
	}
	return DomainKeyword(email)
}

// isNameCandidate applies the structural filters a name line must pass.
func isNameCandidate(line string) bool {
	if strings.ContainsAny(line, "@.") || strings.Contains(strings.ToLower(line), "http") {
		return false
	}
	if len(strings.TrimSpace(line)) < 3 {
		return false
	}
	return !strings.ContainsFunc(line, unicode.IsDigit)
}

// UsernameToken returns the alphabetic characters of the local part of
// email, lowercased. "john.carter99@acme.com" yields "johncarter".
func UsernameToken(email string) string {
	local, _ := splitEmail(email)
	return strings.ToLower(lettersOnly(local))
}

// DomainKeyword returns the first label of the email domain, lowercased.
func DomainKeyword(email string) string {
	_, domain := splitEmail(email)
	label, _, _ := strings.Cut(domain, ".")
	return label
}

// RegistrableKeyword returns the first label of the registrable domain
// (eTLD+1) of email, or "" when the public suffix lookup fails.
func RegistrableKeyword(email string) string {
	_, domain := splitEmail(email)
	if domain == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil || etld1 == "" {
		return ""
	}
	label, _, _ := strings.Cut(etld1, ".")
	return label
}

// splitEmail returns the local part and the lowercased domain of email.
// Anything without exactly one usable '@' yields empty parts.
func splitEmail(email string) (local, domain string) {
	parts := strings.Split(strings.TrimSpace(email), "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], strings.ToLower(parts[1])
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}
