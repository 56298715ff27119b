// Package tagger labels spans of text with named-entity categories.
//
// A Tagger is constructed once, with whatever model loading that needs, and
// passed explicitly to the code that tags documents.
package tagger

import (
	"context"
	"fmt"
	"sort"
)

// Category is a named-entity label.
type Category string

const (
	CategoryPerson   Category = "PERSON"
	CategoryGPE      Category = "GPE"
	CategoryLocation Category = "LOC"
	CategoryFacility Category = "FAC"
	CategoryOrg      Category = "ORG"
)

// AddressCategories are the categories reported as possible address parts.
var AddressCategories = map[Category]bool{
	CategoryGPE:      true,
	CategoryLocation: true,
	CategoryFacility: true,
	CategoryOrg:      true,
}

// Span is one tagged piece of text.
type Span struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Tagger finds entity spans in text.
type Tagger interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// TagEntities returns the spans found in text. Spans may repeat.
	TagEntities(ctx context.Context, text string) ([]Span, error)
}

// Options configures tagger construction.
type Options struct {
	// ModelDir is a directory holding a trained prose model. Empty uses
	// the model bundled with the library.
	ModelDir string

	// Places extends the gazetteer of the rules tagger.
	Places []string
}

// Factory builds a Tagger.
type Factory func(opts Options) (Tagger, error)

// Backends maps backend names to their factories.
var Backends = map[string]Factory{
	BackendProse: func(opts Options) (Tagger, error) { return NewProseTagger(opts.ModelDir) },
	BackendRules: func(opts Options) (Tagger, error) { return NewRulesTagger(opts.Places), nil },
}

// Backend names.
const (
	BackendProse = "prose"
	BackendRules = "rules"
)

// New builds the named backend.
func New(backend string, opts Options) (Tagger, error) {
	factory, ok := Backends[backend]
	if !ok {
		return nil, fmt.Errorf("unknown tagger backend: %q", backend)
	}
	t, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("creating %s tagger: %w", backend, err)
	}
	return t, nil
}

// AddressParts returns the distinct texts of spans whose category is one of
// AddressCategories, sorted. Never nil.
func AddressParts(spans []Span) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range spans {
		if !AddressCategories[s.Category] || s.Text == "" {
			continue
		}
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s.Text)
	}
	sort.Strings(out)
	return out
}
