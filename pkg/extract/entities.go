package extract

import (
	"context"
	"fmt"

	"github.com/otherjamesbrown/contacts-cli/pkg/contacts"
	pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
	"github.com/otherjamesbrown/contacts-cli/pkg/source"
	"github.com/otherjamesbrown/contacts-cli/pkg/tagger"
	"github.com/otherjamesbrown/contacts-cli/pkg/textnorm"
)

// Entities finds emails and permissive phone numbers and asks the tagger for
// location and organisation spans. It does no name attribution.
type Entities struct {
	tagger tagger.Tagger
}

// NewEntities creates the entities strategy around an already built tagger.
func NewEntities(t tagger.Tagger) *Entities {
	return &Entities{tagger: t}
}

// Name implements Strategy.
func (e *Entities) Name() string { return ModeEntities }

// Extract implements Strategy.
func (e *Entities) Extract(ctx context.Context, doc source.Document) (contacts.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := textnorm.Normalize(doc.Text)
	spans, err := e.tagger.TagEntities(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v", pferrors.ErrTagger, e.tagger.Name(), err)
	}

	out := contacts.EntityExtracted{
		Emails:               contacts.FindEmails(text),
		Phones:               contacts.FindPhones(text),
		PossibleAddressParts: tagger.AddressParts(spans),
	}
	if len(out.Emails) == 0 && len(out.Phones) == 0 && len(out.PossibleAddressParts) == 0 {
		return nil, nil
	}
	return &contacts.EntityRecord{Extracted: out}, nil
}
