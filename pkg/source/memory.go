package source

import (
	"context"
	"fmt"
	"path"

	pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
)

// Memory serves fixed documents keyed by relative path. It is used by tests
// and by commands that read a single document from stdin.
type Memory struct {
	docs map[string]string
	errs map[string]error
}

// NewMemory creates a source over docs, keyed by slash-separated relative path.
func NewMemory(docs map[string]string) *Memory {
	m := &Memory{docs: make(map[string]string, len(docs)), errs: make(map[string]error)}
	for k, v := range docs {
		m.docs[k] = v
	}
	return m
}

// FailOn makes Read of relPath return err. The entry is still discovered.
func (m *Memory) FailOn(relPath string, err error) {
	m.errs[relPath] = err
	if _, ok := m.docs[relPath]; !ok {
		m.docs[relPath] = ""
	}
}

// Discover implements Source.
func (m *Memory) Discover(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(m.docs))
	for rel, text := range m.docs {
		entries = append(entries, Entry{
			Path:    rel,
			RelPath: rel,
			Name:    path.Base(rel),
			Size:    int64(len(text)),
		})
	}
	sortEntries(entries)
	return entries, nil
}

// Read implements Source.
func (m *Memory) Read(ctx context.Context, e Entry) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if err, ok := m.errs[e.RelPath]; ok {
		return Document{}, fmt.Errorf("reading %s: %w", e.RelPath, err)
	}
	text, ok := m.docs[e.RelPath]
	if !ok {
		return Document{}, fmt.Errorf("reading %s: %w", e.RelPath, pferrors.ErrNotFound)
	}
	return Document{Entry: e, Text: Decode([]byte(text)), Attempts: 1}, nil
}
