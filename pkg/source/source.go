// Package source discovers and reads the text documents an extraction run
// works on. Decoding is best-effort: bad bytes never fail a read.
package source

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultPattern selects PDF text dumps.
const DefaultPattern = "*.pdf.txt"

// Entry identifies a discovered document.
type Entry struct {
	// Path is the location used to read the document.
	Path string
	// RelPath is Path relative to the source root, slash separated.
	RelPath string
	// Name is the base name of the document.
	Name string
	// Size is the size in bytes when known.
	Size int64
}

// Document is a document read into memory.
type Document struct {
	Entry
	Text string
	// Attempts is the number of reads it took, at least 1.
	Attempts int
}

// Source lists and reads documents.
type Source interface {
	// Discover returns every document of the source in a stable order.
	Discover(ctx context.Context) ([]Entry, error)

	// Read loads one discovered document.
	Read(ctx context.Context, e Entry) (Document, error)
}

// Decode turns raw bytes into text. A UTF-16 byte order mark switches the
// decoder to UTF-16; anything else is read as UTF-8 with invalid sequences
// replaced by U+FFFD.
func Decode(raw []byte) string {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\ufffd")
	}
	return string(out)
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].RelPath < entries[j].RelPath })
}

// matchName reports whether the base name of a file matches pattern.
func matchName(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}
