// Package output writes extraction results as a JSON array.
//
// Files are replaced atomically: the array is written to a temporary file in
// the destination directory, synced, then renamed over the target. A reader
// never sees a half-written result.
package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/otherjamesbrown/contacts-cli/pkg/contacts"
)

// DefaultPath is the output file used when none is configured.
const DefaultPath = "extracted_contacts.json"

const (
	filePerm = 0o644
	dirPerm  = 0o755
	indent   = "    "
)

// Encode writes records to w as an indented JSON array followed by a newline.
// An empty or nil slice is written as [].
func Encode(w io.Writer, records []contacts.Record) error {
	if records == nil {
		records = []contacts.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", indent)
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// WriteFile atomically replaces path with the encoded records.
func WriteFile(ctx context.Context, path string, records []contacts.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		path = DefaultPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".contacts-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, filePerm)

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, records); err != nil {
		return fail(fmt.Errorf("encoding records: %w", err))
	}
	if err := bw.Flush(); err != nil {
		return fail(fmt.Errorf("writing %s: %w", tmpPath, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing %s: %w", tmpPath, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ReadContacts loads a file written by the heuristic mode.
func ReadContacts(path string) ([]contacts.ContactRecord, error) {
	var out []contacts.ContactRecord
	if err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadEntities loads a file written by the entities mode.
func ReadEntities(path string) ([]contacts.EntityRecord, error) {
	var out []contacts.EntityRecord
	if err := readJSON(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
