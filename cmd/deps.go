// Package cmd provides CLI commands for the contacts tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/otherjamesbrown/contacts-cli/config"
	"github.com/otherjamesbrown/contacts-cli/pkg/buildinfo"
	"github.com/otherjamesbrown/contacts-cli/pkg/contacts"
	"github.com/otherjamesbrown/contacts-cli/pkg/events"
	"github.com/otherjamesbrown/contacts-cli/pkg/extract"
	"github.com/otherjamesbrown/contacts-cli/pkg/logging"
	"github.com/otherjamesbrown/contacts-cli/pkg/source"
	"github.com/otherjamesbrown/contacts-cli/pkg/tagger"
)

// CommandDeps holds the dependencies for the contacts commands.
type CommandDeps struct {
	LoadConfig func() (*config.Config, error)
	SaveConfig func(*config.Config, string) error
	ConfigPath func() (string, error)
	NewLogger  func(cfg *config.Config, w io.Writer) logging.Logger
	NewTagger  func(cfg *config.Config) (tagger.Tagger, error)
	NewSource  func(cfg *config.Config) source.Source
	DialRedis  func(ctx context.Context, url string, timeout time.Duration) (events.Sink, error)

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultDeps returns the default dependencies for production use.
func DefaultDeps() *CommandDeps {
	return &CommandDeps{
		LoadConfig: config.LoadConfig,
		SaveConfig: config.SaveConfig,
		ConfigPath: config.ConfigPath,
		NewLogger:  NewLogger,
		NewTagger:  NewTagger,
		NewSource:  NewSource,
		DialRedis: func(ctx context.Context, url string, timeout time.Duration) (events.Sink, error) {
			return events.DialRedis(ctx, url, timeout)
		},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// withDefaults fills unset fields from DefaultDeps.
func (d *CommandDeps) withDefaults() *CommandDeps {
	def := DefaultDeps()
	if d == nil {
		return def
	}
	out := *d
	if out.LoadConfig == nil {
		out.LoadConfig = def.LoadConfig
	}
	if out.SaveConfig == nil {
		out.SaveConfig = def.SaveConfig
	}
	if out.ConfigPath == nil {
		out.ConfigPath = def.ConfigPath
	}
	if out.NewLogger == nil {
		out.NewLogger = def.NewLogger
	}
	if out.NewTagger == nil {
		out.NewTagger = def.NewTagger
	}
	if out.NewSource == nil {
		out.NewSource = def.NewSource
	}
	if out.DialRedis == nil {
		out.DialRedis = def.DialRedis
	}
	if out.Stdin == nil {
		out.Stdin = def.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = def.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = def.Stderr
	}
	return &out
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg *config.Config, w io.Writer) logging.Logger {
	return logging.NewLogger(&logging.Config{
		Level:       logging.ParseLevel(cfg.Log.Level),
		ServiceName: "contacts",
		Version:     buildinfo.Version,
		Format:      logging.Format(cfg.Log.Format),
		Output:      w,
	})
}

// NewTagger builds the configured entity tagger.
func NewTagger(cfg *config.Config) (tagger.Tagger, error) {
	return tagger.New(cfg.Tagger.Backend, tagger.Options{
		ModelDir: cfg.Tagger.ModelDir,
		Places:   cfg.Tagger.Places,
	})
}

// NewSource builds a filesystem source over cfg.InputDir.
func NewSource(cfg *config.Config) source.Source {
	return source.NewFS(source.FSConfig{
		Root:         cfg.InputDir,
		Pattern:      cfg.FilePattern,
		MaxFileBytes: cfg.MaxFileBytes,
		ReadRetries:  cfg.ReadRetries,
	})
}

// attributionOptions maps the attribution config onto the heuristics.
func attributionOptions(cfg *config.Config) contacts.AttributionOptions {
	return contacts.AttributionOptions{
		PersonMatch:    contacts.PersonMatch(cfg.Attribution.PersonMatch),
		CompanyKeyword: contacts.CompanyKeyword(cfg.Attribution.CompanyKeyword),
		MinTokenLength: cfg.Attribution.MinTokenLength,
	}
}

// newStrategy builds the strategy for cfg.Mode. The tagger is only
// constructed when the mode needs one, since model loading is slow.
func newStrategy(cfg *config.Config, deps *CommandDeps) (extract.Strategy, error) {
	sdeps := extract.Deps{Attribution: attributionOptions(cfg)}
	if cfg.Mode == extract.ModeEntities {
		t, err := deps.NewTagger(cfg)
		if err != nil {
			return nil, err
		}
		sdeps.Tagger = t
	}

	strat, err := extract.New(cfg.Mode, sdeps)
	if err != nil {
		return nil, fmt.Errorf("creating %s strategy: %w", cfg.Mode, err)
	}
	return strat, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
