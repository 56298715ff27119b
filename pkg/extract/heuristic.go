package extract

import (
	"context"

	"github.com/otherjamesbrown/contacts-cli/pkg/contacts"
	"github.com/otherjamesbrown/contacts-cli/pkg/source"
	"github.com/otherjamesbrown/contacts-cli/pkg/textnorm"
)

// Heuristic finds emails, mobiles and landlines and attributes the primary
// email to a person name and a company name.
type Heuristic struct {
	attr *contacts.Attributor
}

// NewHeuristic creates the heuristic strategy.
func NewHeuristic(attr *contacts.Attributor) *Heuristic {
	return &Heuristic{attr: attr}
}

// Name implements Strategy.
func (h *Heuristic) Name() string { return ModeHeuristic }

// Extract implements Strategy.
func (h *Heuristic) Extract(ctx context.Context, doc source.Document) (contacts.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := contacts.Extract(textnorm.Normalize(doc.Text), h.attr)
	if rec == nil {
		return nil, nil
	}
	return rec, nil
}
