package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/contacts-cli/pkg/contacts"
	pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
	"github.com/otherjamesbrown/contacts-cli/pkg/source"
	"github.com/otherjamesbrown/contacts-cli/pkg/tagger"
)

type stubTagger struct {
	spans []tagger.Span
	err   error
}

func (s *stubTagger) Name() string { return "stub" }

func (s *stubTagger) TagEntities(ctx context.Context, text string) ([]tagger.Span, error) {
	return s.spans, s.err
}

func doc(name, text string) source.Document {
	return source.Document{Entry: source.Entry{Name: name, RelPath: name}, Text: text}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		deps    Deps
		wantErr string
	}{
		{name: "heuristic", mode: ModeHeuristic},
		{name: "entities", mode: ModeEntities, deps: Deps{Tagger: &stubTagger{}}},
		{name: "entities without tagger", mode: ModeEntities, wantErr: "requires a tagger"},
		{name: "unknown", mode: "regex", wantErr: "unknown extraction mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.mode, tt.deps)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, s.Name())
		})
	}
}

func TestModes(t *testing.T) {
	assert.Equal(t, []string{ModeEntities, ModeHeuristic}, Modes())
}

func TestHeuristic_Extract(t *testing.T) {
	s := NewHeuristic(contacts.NewAttributor(contacts.DefaultAttributionOptions()))

	text := "WidgetCo Pvt Ltd\r\nJane\u00a0Doe\u200b\nMobile: +91 98765 43210\nMobile: 9876543210\nemail: jane@widgetco.io\n"
	rec, err := s.Extract(context.Background(), doc("a.pdf.txt", text))
	require.NoError(t, err)
	require.NotNil(t, rec)

	cr, ok := rec.(*contacts.ContactRecord)
	require.True(t, ok)
	assert.Equal(t, []string{"jane@widgetco.io"}, cr.FileEmails)
	assert.Equal(t, []string{"9876543210"}, cr.FilePhones)
	assert.Equal(t, "jane@widgetco.io", cr.PrimaryEmail)
	assert.Equal(t, "Jane Doe", cr.PersonName)
	assert.Equal(t, "WidgetCo Pvt Ltd", cr.CompanyName)
}

func TestHeuristic_Extract_NothingFound(t *testing.T) {
	s := NewHeuristic(contacts.NewAttributor(contacts.DefaultAttributionOptions()))

	rec, err := s.Extract(context.Background(), doc("empty.pdf.txt", "no contact details here"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestHeuristic_Extract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewHeuristic(contacts.NewAttributor(contacts.DefaultAttributionOptions()))
	_, err := s.Extract(ctx, doc("a.pdf.txt", "jane@widgetco.io"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEntities_Extract(t *testing.T) {
	s := NewEntities(tagger.NewRulesTagger(nil))

	text := "WidgetCo Solutions Pvt Ltd\n12 MG Road, Bengaluru\nPh: +91 9876543210\njane@widgetco.io"
	rec, err := s.Extract(context.Background(), doc("a.pdf.txt", text))
	require.NoError(t, err)
	require.NotNil(t, rec)

	er, ok := rec.(*contacts.EntityRecord)
	require.True(t, ok)
	assert.Equal(t, []string{"jane@widgetco.io"}, er.Extracted.Emails)
	assert.Equal(t, []string{"+91 9876543210"}, er.Extracted.Phones)
	assert.Contains(t, er.Extracted.PossibleAddressParts, "Bengaluru")
	assert.Contains(t, er.Extracted.PossibleAddressParts, "12 MG Road")
	assert.Contains(t, er.Extracted.PossibleAddressParts, "WidgetCo Solutions Pvt Ltd")
}

func TestEntities_Extract_OnlyAddressParts(t *testing.T) {
	s := NewEntities(&stubTagger{spans: []tagger.Span{
		{Text: "Pune", Category: tagger.CategoryGPE},
		{Text: "Jane", Category: tagger.CategoryPerson},
	}})

	rec, err := s.Extract(context.Background(), doc("a.pdf.txt", "Visit us in Pune"))
	require.NoError(t, err)
	require.NotNil(t, rec)

	er := rec.(*contacts.EntityRecord)
	assert.Empty(t, er.Extracted.Emails)
	assert.NotNil(t, er.Extracted.Emails)
	assert.Equal(t, []string{"Pune"}, er.Extracted.PossibleAddressParts)
}

func TestEntities_Extract_NothingFound(t *testing.T) {
	s := NewEntities(&stubTagger{spans: []tagger.Span{{Text: "Jane", Category: tagger.CategoryPerson}}})

	rec, err := s.Extract(context.Background(), doc("a.pdf.txt", "Jane says hello"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestEntities_Extract_TaggerError(t *testing.T) {
	s := NewEntities(&stubTagger{err: errors.New("model exploded")})

	_, err := s.Extract(context.Background(), doc("a.pdf.txt", "jane@widgetco.io"))
	require.Error(t, err)
	assert.True(t, pferrors.IsTagger(err))
	assert.ErrorContains(t, err, "model exploded")
	assert.Equal(t, pferrors.ErrCodeTagger, pferrors.ClassifyError(err, pferrors.StageExtract, "a.pdf.txt").Code)
}
