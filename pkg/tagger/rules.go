package tagger

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Patterns run line by line so no span crosses a line break.
var (
	// streetPatterns match street-level address fragments.
	streetPatterns = []*regexp.Regexp{
		// 12 MG Road, 221B Baker Street, 5th Cross Lane
		regexp.MustCompile(`(?i)\b\d+[A-Za-z]{0,2}[ ,]+(?:[A-Za-z]+ ){0,3}(?:street|st|road|rd|avenue|ave|lane|ln|marg|cross|main|boulevard|blvd|drive|dr|way|highway)\b`),
		// Lajpat Nagar, Salt Lake Colony, HSR Layout, Sector 21
		regexp.MustCompile(`\b(?:[A-Z][a-z]+ ){1,2}(?:Nagar|Colony|Layout|Enclave|Vihar|Puram|Bagh|Ganj)\b`),
		regexp.MustCompile(`(?i)\bsector[ -]?\d{1,3}\b`),
	}

	// facilityPatterns match named buildings.
	facilityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:[A-Z][A-Za-z]+ ){1,3}(?:Tower|Towers|Complex|Plaza|Building|House|Park|Chambers|Bhavan|Bhawan)\b`),
	}

	// orgPattern matches capitalised names ending in a company suffix.
	orgPattern = regexp.MustCompile(`\b(?:[A-Z][A-Za-z&]*[ ]){1,4}(?:Pvt\.? Ltd\.?|Private Limited|Ltd\.?|Limited|LLP|LLC|Inc\.?|Corp\.?|Corporation|Technologies|Solutions|Industries|Enterprises)`)
)

// defaultPlaces is the built-in gazetteer of geo-political names.
var defaultPlaces = []string{
	"India", "Delhi", "New Delhi", "Mumbai", "Bengaluru", "Bangalore", "Chennai",
	"Kolkata", "Hyderabad", "Pune", "Ahmedabad", "Jaipur", "Lucknow", "Noida",
	"Gurugram", "Gurgaon", "Kochi", "Chandigarh", "Indore", "Bhopal", "Nagpur",
	"Surat", "Coimbatore", "Visakhapatnam", "Thiruvananthapuram",
	"Maharashtra", "Karnataka", "Tamil Nadu", "Kerala", "Telangana", "Gujarat",
	"Rajasthan", "Uttar Pradesh", "West Bengal", "Haryana", "Punjab",
	"Madhya Pradesh", "Andhra Pradesh", "Bihar", "Odisha", "Goa",
	"United States", "USA", "United Kingdom", "UK", "Singapore", "Dubai",
	"London", "New York",
}

// RulesTagger is a deterministic tagger built from regular expressions and
// a gazetteer. It needs no model and always produces the same spans.
type RulesTagger struct {
	places *regexp.Regexp
}

// NewRulesTagger creates a rules tagger. extraPlaces are added to the
// built-in gazetteer.
func NewRulesTagger(extraPlaces []string) *RulesTagger {
	names := append(append([]string{}, defaultPlaces...), extraPlaces...)
	// Longest first so "New Delhi" wins over "Delhi".
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	quoted := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(n))
	}

	return &RulesTagger{
		places: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Name implements Tagger.
func (t *RulesTagger) Name() string { return BackendRules }

// TagEntities implements Tagger.
func (t *RulesTagger) TagEntities(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var spans []Span
	for _, line := range strings.Split(text, "\n") {
		spans = appendMatches(spans, line, CategoryFacility, streetPatterns...)
		spans = appendMatches(spans, line, CategoryFacility, facilityPatterns...)
		spans = appendMatches(spans, line, CategoryOrg, orgPattern)
		spans = appendMatches(spans, line, CategoryGPE, t.places)
	}
	return spans, nil
}

func appendMatches(spans []Span, line string, cat Category, patterns ...*regexp.Regexp) []Span {
	for _, p := range patterns {
		for _, m := range p.FindAllString(line, -1) {
			m = strings.Trim(m, " ,")
			if m != "" {
				spans = append(spans, Span{Text: m, Category: cat})
			}
		}
	}
	return spans
}
