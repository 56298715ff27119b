package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"

	pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
)

// defaultRetryDelay separates read attempts.
const defaultRetryDelay = 100 * time.Millisecond

// FSConfig configures a filesystem source.
type FSConfig struct {
	// Root is a directory walked recursively, or a single file.
	Root string

	// Pattern is matched against file base names. Defaults to DefaultPattern.
	Pattern string

	// MaxFileBytes rejects larger files. Zero means no limit.
	MaxFileBytes int64

	// ReadRetries is the number of extra read attempts after a failure.
	ReadRetries int

	// RetryDelay separates read attempts. Defaults to 100ms.
	RetryDelay time.Duration
}

// FS reads documents from the local filesystem.
type FS struct {
	cfg FSConfig
}

// NewFS creates a filesystem source.
func NewFS(cfg FSConfig) *FS {
	if cfg.Pattern == "" {
		cfg.Pattern = DefaultPattern
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &FS{cfg: cfg}
}

// Root returns the configured root.
func (s *FS) Root() string { return s.cfg.Root }

// Discover walks the root and returns matching files sorted by relative path.
func (s *FS) Discover(ctx context.Context) ([]Entry, error) {
	info, err := os.Stat(s.cfg.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("input %s: %w", s.cfg.Root, pferrors.ErrNotFound)
		}
		return nil, err
	}

	if !info.IsDir() {
		// A single file is taken as given, whatever its name.
		return []Entry{{
			Path:    s.cfg.Root,
			RelPath: filepath.ToSlash(filepath.Base(s.cfg.Root)),
			Name:    filepath.Base(s.cfg.Root),
			Size:    info.Size(),
		}}, nil
	}

	var entries []Entry
	err = filepath.WalkDir(s.cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !matchName(s.cfg.Pattern, d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(s.cfg.Root, p)
		if err != nil {
			return err
		}
		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}
		entries = append(entries, Entry{
			Path:    p,
			RelPath: filepath.ToSlash(rel),
			Name:    d.Name(),
			Size:    size,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.cfg.Root, err)
	}

	sortEntries(entries)
	return entries, nil
}

// Read loads and decodes one file. Transient failures are retried up to
// ReadRetries times; missing and oversized files fail immediately.
func (s *FS) Read(ctx context.Context, e Entry) (Document, error) {
	attempts := 0
	op := func() ([]byte, error) {
		attempts++
		if err := ctx.Err(); err != nil {
			return nil, backoff.Permanent(err)
		}
		raw, err := s.readFile(e.Path)
		if err != nil && isPermanent(err) {
			return nil, backoff.Permanent(err)
		}
		return raw, err
	}

	raw, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(s.cfg.ReadRetries+1)),
	)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", e.RelPath, err)
	}

	return Document{Entry: e, Text: Decode(raw), Attempts: attempts}, nil
}

func (s *FS) readFile(path string) ([]byte, error) {
	if s.cfg.MaxFileBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > s.cfg.MaxFileBytes {
			return nil, fmt.Errorf("%d bytes exceeds maximum of %d: %w",
				info.Size(), s.cfg.MaxFileBytes, pferrors.ErrTooLarge)
		}
	}
	return os.ReadFile(path)
}

func isPermanent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, pferrors.ErrTooLarge) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
