package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/contacts-cli/config"
	"github.com/otherjamesbrown/contacts-cli/pkg/batch"
	pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
	"github.com/otherjamesbrown/contacts-cli/pkg/events"
	"github.com/otherjamesbrown/contacts-cli/pkg/logging"
	"github.com/otherjamesbrown/contacts-cli/pkg/observability"
	"github.com/otherjamesbrown/contacts-cli/pkg/output"
)

// strategyFlags are the flags shared by commands that run a strategy.
type strategyFlags struct {
	mode           string
	personMatch    string
	companyKeyword string
	taggerBackend  string
}

func (f *strategyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "Extraction mode: heuristic, entities")
	cmd.Flags().StringVar(&f.personMatch, "person-match", "", "Person name matching: exact, compact")
	cmd.Flags().StringVar(&f.companyKeyword, "company-keyword", "", "Company keyword: first-label, registrable")
	cmd.Flags().StringVar(&f.taggerBackend, "tagger", "", "Entity tagger for entities mode: prose, rules")
}

func (f *strategyFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name, value string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst = value
		}
	}
	set("mode", f.mode, &cfg.Mode)
	set("person-match", f.personMatch, &cfg.Attribution.PersonMatch)
	set("company-keyword", f.companyKeyword, &cfg.Attribution.CompanyKeyword)
	set("tagger", f.taggerBackend, &cfg.Tagger.Backend)
}

// extractFlags holds the flags of the extract command.
type extractFlags struct {
	strategyFlags

	out         string
	pattern     string
	onReadError string
	readRetries int
	maxBytes    int64
	metricsFile string
	eventsFile  string
	eventsRedis string
	dryRun      bool
	noProgress  bool
}

// NewExtractCommand creates the extract command.
func NewExtractCommand(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()
	flags := &extractFlags{}

	cmd := &cobra.Command{
		Use:   "extract [input-folder]",
		Short: "Extract contact details from PDF text dumps",
		Long: `Scan a folder of PDF text dumps and write the contact details found to a
JSON file.

Every file matching --pattern (default *.pdf.txt) under the input folder is
read, normalised and searched. Files are processed one at a time in path
order. Files without any match are skipped; files that cannot be read are
skipped with a warning, or abort the run with --on-read-error abort.

Modes:
  heuristic   emails, mobiles and landlines, with the person and company
              guessed from the lines around the primary email
  entities    emails, phone numbers and address fragments found by an
              entity tagger (prose model or built-in rules)

Examples:
  # Extract from the current folder into extracted_contacts.json
  contacts extract

  # Extract from a folder into a chosen file
  contacts extract ./dumps --out contacts.json

  # Use the entity tagger with the built-in rules
  contacts extract ./dumps --mode entities --tagger rules

  # Stop at the first unreadable file
  contacts extract ./dumps --on-read-error abort

  # Preview counts without writing anything
  contacts extract ./dumps --dry-run --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			cfg = flags.applyTo(cmd, cfg, args)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			return runExtract(cmd.Context(), deps, cfg, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.out, "out", "", "Output file (default extracted_contacts.json)")
	cmd.Flags().StringVar(&flags.pattern, "pattern", "", "File name glob (default *.pdf.txt)")
	cmd.Flags().StringVar(&flags.onReadError, "on-read-error", "", "Unreadable files: skip, abort")
	cmd.Flags().IntVar(&flags.readRetries, "read-retries", 0, "Extra read attempts after a failed read")
	cmd.Flags().Int64Var(&flags.maxBytes, "max-file-bytes", 0, "Reject files larger than this (0 = no limit)")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().StringVar(&flags.eventsFile, "events-file", "", "Append run events as JSON lines to this file")
	cmd.Flags().StringVar(&flags.eventsRedis, "events-redis", "", "Publish run events to this Redis URL")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Extract and report without writing the output file")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Do not render progress on a terminal")

	return cmd
}

// applyTo returns a copy of cfg with the changed flags and the input
// argument applied.
func (f *extractFlags) applyTo(cmd *cobra.Command, base *config.Config, args []string) *config.Config {
	cfg := *base
	f.apply(cmd, &cfg)

	if len(args) > 0 {
		cfg.InputDir = args[0]
	}

	changed := cmd.Flags().Changed
	if changed("out") {
		cfg.OutputFile = f.out
	}
	if changed("pattern") {
		cfg.FilePattern = f.pattern
	}
	if changed("on-read-error") {
		cfg.OnReadError = f.onReadError
	}
	if changed("read-retries") {
		cfg.ReadRetries = f.readRetries
	}
	if changed("max-file-bytes") {
		cfg.MaxFileBytes = f.maxBytes
	}
	if changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if changed("events-file") {
		cfg.Events.File = f.eventsFile
	}
	if changed("events-redis") {
		cfg.Events.RedisURL = f.eventsRedis
	}

	cfg.Resolve()
	return &cfg
}

// runExtract executes one extraction run.
func runExtract(ctx context.Context, deps *CommandDeps, cfg *config.Config, flags *extractFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.NewLogger(cfg, deps.Stderr)

	strat, err := newStrategy(cfg, deps)
	if err != nil {
		return err
	}

	opts := []batch.Option{}

	var registry *prometheus.Registry
	if cfg.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, batch.WithMetrics(observability.NewExtractMetrics(registry)))
		defer writeMetrics(registry, cfg.MetricsFile, logger)
	}

	publisher, err := openPublisher(ctx, deps, cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()
	opts = append(opts, batch.WithPublisher(publisher))

	if cfg.OutputFormat == config.OutputFormatText && !flags.noProgress && isTerminal(deps.Stderr) {
		opts = append(opts, batch.WithProgress(func(s batch.ProgressSnapshot) {
			displayProgress(deps.Stderr, s)
		}))
	}

	outPath := cfg.OutputFile
	if flags.dryRun {
		outPath = ""
	}

	processor := batch.NewProcessor(deps.NewSource(cfg), strat, logger, batch.ProcessorConfig{
		Input:       cfg.InputDir,
		Output:      outPath,
		OnReadError: batch.ErrorPolicy(cfg.OnReadError),
		RevealPII:   cfg.Log.RevealPII,
	}, opts...)

	result, err := processor.Process(ctx)
	if err != nil {
		return withSuggestion(deps.Stderr, "extraction aborted", err)
	}

	if !flags.dryRun {
		if err := output.WriteFile(ctx, cfg.OutputFile, result.Records); err != nil {
			ee := pferrors.ClassifyError(err, pferrors.StageWrite, cfg.OutputFile)
			return withSuggestion(deps.Stderr, "writing results", ee)
		}
		logger.Info("Results written",
			logging.F("path", cfg.OutputFile),
			logging.F("records", len(result.Records)))
	}

	return displayResult(deps.Stdout, cfg.OutputFormat, newExtractSummary(result, outPath, flags.dryRun))
}

// openPublisher opens the configured event sinks.
func openPublisher(ctx context.Context, deps *CommandDeps, cfg *config.Config, logger logging.Logger) (*events.Publisher, error) {
	var sinks []events.Sink

	if cfg.Events.File != "" {
		sink, err := events.OpenFileSink(cfg.Events.File)
		if err != nil {
			return nil, fmt.Errorf("opening events file: %w", err)
		}
		sinks = append(sinks, sink)
	}

	if cfg.Events.RedisURL != "" {
		sink, err := deps.DialRedis(ctx, cfg.Events.RedisURL, cfg.Events.Timeout)
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, fmt.Errorf("connecting to events redis: %w", err)
		}
		sinks = append(sinks, sink)
	}

	return events.NewPublisher(logger, sinks...), nil
}

func writeMetrics(g prometheus.Gatherer, path string, logger logging.Logger) {
	if err := observability.WriteTextfile(g, path); err != nil {
		logger.Warn("Failed to write metrics", logging.Err(err))
	}
}

// withSuggestion prints the suggested action for a classified error and
// returns the wrapped error.
func withSuggestion(w io.Writer, what string, err error) error {
	if code := pferrors.CodeOf(err); code != "" {
		if action := pferrors.GetSuggestedAction(code); action != "" {
			fmt.Fprintf(w, "Suggestion: %s\n", action)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// displayProgress renders a single progress line.
func displayProgress(w io.Writer, s batch.ProgressSnapshot) {
	if s.ProcessedCount == 0 {
		return
	}

	remaining := ""
	if s.EstimatedRemainingSeconds != nil && !s.IsComplete() {
		remaining = fmt.Sprintf(" ETA: %s", formatDuration(time.Duration(*s.EstimatedRemainingSeconds*float64(time.Second))))
	}

	fmt.Fprintf(w, "\r  [%3.0f%%] %d/%d files (extracted: %d, skipped: %d, failed: %d)%s   ",
		s.PercentComplete(),
		s.ProcessedCount,
		s.TotalFiles,
		s.ExtractedCount,
		s.SkippedCount,
		s.FailedCount,
		remaining)
	if s.IsComplete() {
		fmt.Fprintln(w)
	}
}

// extractSummary is the JSON/YAML output structure of a run.
type extractSummary struct {
	RunID       string            `json:"run_id" yaml:"run_id"`
	Mode        string            `json:"mode" yaml:"mode"`
	Input       string            `json:"input" yaml:"input"`
	Output      string            `json:"output,omitempty" yaml:"output,omitempty"`
	DryRun      bool              `json:"dry_run" yaml:"dry_run"`
	TotalFiles  int               `json:"total_files" yaml:"total_files"`
	Extracted   int               `json:"extracted" yaml:"extracted"`
	Skipped     int               `json:"skipped" yaml:"skipped"`
	Failed      int               `json:"failed" yaml:"failed"`
	Success     bool              `json:"success" yaml:"success"`
	StartedAt   string            `json:"started_at" yaml:"started_at"`
	CompletedAt string            `json:"completed_at" yaml:"completed_at"`
	DurationMs  int64             `json:"duration_ms" yaml:"duration_ms"`
	Errors      []batch.FileError `json:"errors" yaml:"errors"`
}

func newExtractSummary(r *batch.Result, outPath string, dryRun bool) extractSummary {
	return extractSummary{
		RunID:       r.RunID,
		Mode:        r.Mode,
		Input:       r.Input,
		Output:      outPath,
		DryRun:      dryRun,
		TotalFiles:  r.TotalFiles,
		Extracted:   r.ExtractedCount,
		Skipped:     r.SkippedCount,
		Failed:      r.FailedCount,
		Success:     r.Success,
		StartedAt:   r.StartedAt.Format(time.RFC3339),
		CompletedAt: r.CompletedAt.Format(time.RFC3339),
		DurationMs:  r.CompletedAt.Sub(r.StartedAt).Milliseconds(),
		Errors:      r.Errors,
	}
}

// displayResult writes the run summary in the requested format.
func displayResult(w io.Writer, format config.OutputFormat, s extractSummary) error {
	switch format {
	case config.OutputFormatJSON:
		return writeJSON(w, s)
	case config.OutputFormatYAML:
		return writeYAML(w, s)
	default:
		outputExtractText(w, s)
		return nil
	}
}

// outputExtractText displays the summary in human-readable format. The last
// line names the output file.
func outputExtractText(w io.Writer, s extractSummary) {
	fmt.Fprintf(w, "Processed %d files in %s: %d extracted, %d skipped, %d failed\n",
		s.TotalFiles, formatDuration(time.Duration(s.DurationMs)*time.Millisecond),
		s.Extracted, s.Skipped, s.Failed)

	if len(s.Errors) > 0 {
		fmt.Fprintln(w, "Failed files:")
		for i, e := range s.Errors {
			if i >= 10 {
				fmt.Fprintf(w, "  ... and %d more\n", len(s.Errors)-10)
				break
			}
			fmt.Fprintf(w, "  - %s: %s\n", truncate(e.File, 60), e.Code)
		}
	}

	if s.DryRun {
		fmt.Fprintf(w, "Dry run: %d %s not written\n", s.Extracted, plural(s.Extracted, "record", "records"))
		return
	}
	fmt.Fprintf(w, "Extraction completed \u2192 %s\n", s.Output)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// truncate shortens s to maxLen, keeping the end, which holds the file name.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[len(s)-maxLen:]
	}
	return "..." + s[len(s)-maxLen+3:]
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
