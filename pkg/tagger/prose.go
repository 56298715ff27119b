package tagger

import (
	"context"
	"fmt"
	"os"

	"github.com/jdkato/prose/v2"
)

// ProseTagger tags entities with the prose named-entity extractor.
type ProseTagger struct {
	model *prose.Model
}

// NewProseTagger creates a tagger backed by prose. When modelDir is set the
// model is read from disk here, once, and reused for every document.
func NewProseTagger(modelDir string) (t *ProseTagger, err error) {
	t = &ProseTagger{}
	if modelDir == "" {
		return t, nil
	}

	if _, err := os.Stat(modelDir); err != nil {
		return nil, fmt.Errorf("model directory: %w", err)
	}

	// ModelFromDisk panics on unreadable model files.
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("loading model from %s: %v", modelDir, r)
		}
	}()
	t.model = prose.ModelFromDisk(modelDir)
	return t, nil
}

// Name implements Tagger.
func (t *ProseTagger) Name() string { return BackendProse }

// TagEntities implements Tagger.
func (t *ProseTagger) TagEntities(ctx context.Context, text string) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var opts []prose.DocOpt
	if t.model != nil {
		opts = append(opts, prose.UsingModel(t.model))
	}

	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, fmt.Errorf("tagging document: %w", err)
	}

	ents := doc.Entities()
	spans := make([]Span, 0, len(ents))
	for _, e := range ents {
		spans = append(spans, Span{Text: e.Text, Category: Category(e.Label)})
	}
	return spans, nil
}
