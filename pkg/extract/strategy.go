// Package extract turns one document into at most one output record.
//
// Two interchangeable strategies exist: the heuristic strategy attributes
// the primary email to a person and a company, the entities strategy
// reports tagger-derived address fragments. Exactly one is used per run.
package extract

import (
	"context"
	"fmt"
	"sort"

	"github.com/otherjamesbrown/contacts-cli/pkg/contacts"
	"github.com/otherjamesbrown/contacts-cli/pkg/source"
	"github.com/otherjamesbrown/contacts-cli/pkg/tagger"
)

// Strategy names.
const (
	ModeHeuristic = "heuristic"
	ModeEntities  = "entities"
)

// Strategy extracts a record from a document. A nil record with a nil error
// means the document holds nothing worth reporting.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc source.Document) (contacts.Record, error)
}

// Deps carries what strategies may need. Only the entities strategy uses
// the tagger.
type Deps struct {
	Attribution contacts.AttributionOptions
	Tagger      tagger.Tagger
}

// Factory builds a Strategy.
type Factory func(deps Deps) (Strategy, error)

// Strategies maps strategy names to their factories.
var Strategies = map[string]Factory{
	ModeHeuristic: func(deps Deps) (Strategy, error) {
		return NewHeuristic(contacts.NewAttributor(deps.Attribution)), nil
	},
	ModeEntities: func(deps Deps) (Strategy, error) {
		if deps.Tagger == nil {
			return nil, fmt.Errorf("%s strategy requires a tagger", ModeEntities)
		}
		return NewEntities(deps.Tagger), nil
	},
}

// New builds the named strategy.
func New(mode string, deps Deps) (Strategy, error) {
	factory, ok := Strategies[mode]
	if !ok {
		return nil, fmt.Errorf("unknown extraction mode %q (available: %v)", mode, Modes())
	}
	return factory(deps)
}

// Modes returns the registered strategy names, sorted.
func Modes() []string {
	names := make([]string, 0, len(Strategies))
	for name := range Strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
