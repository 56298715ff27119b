// Package textnorm reduces raw document text to a clean ASCII form that the
// pattern matchers and attribution heuristics can work on line by line.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// invisible lists the zero-width and byte-order runes that are deleted outright.
var invisible = map[rune]bool{
	'\u200b': true, // zero width space
	'\u200c': true, // zero width non-joiner
	'\u200d': true, // zero width joiner
	'\u2060': true, // word joiner
	'\ufeff': true, // byte order mark
}

// newChain builds the rune-level pipeline. Chains carry buffers, so each call
// gets its own.
func newChain() transform.Transformer {
	return transform.Chain(
		runes.Remove(runes.Predicate(func(r rune) bool { return invisible[r] })),
		runes.Map(toPlainSpace),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
}

// toPlainSpace maps every horizontal space variant to ' '. ASCII line breaks
// pass through and Unicode line separators become '\n', so the line
// structure survives the ASCII filter.
func toPlainSpace(r rune) rune {
	switch r {
	case '\n', '\r':
		return r
	case '\u0085', '\u2028', '\u2029':
		return '\n'
	}
	if unicode.Is(unicode.Zs, r) || unicode.IsSpace(r) {
		return ' '
	}
	return r
}

// Normalize returns s with invisible runes removed, space variants mapped to
// a plain space, non-ASCII dropped and whitespace collapsed. Line breaks are
// kept as single '\n' separators; lines are trimmed and blank lines removed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	cleaned, _, err := transform.String(newChain(), s)
	if err != nil {
		// The chain only removes and maps runes; fall back to a manual pass
		// rather than losing the document.
		cleaned = fallback(s)
	}
	return collapse(cleaned)
}

// Lines returns the normalized lines of s.
func Lines(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, "\n")
}

func collapse(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(fields, " "))
	}
	return b.String()
}

func fallback(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if invisible[r] {
			continue
		}
		r = toPlainSpace(r)
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
