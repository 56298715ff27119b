package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/contacts-cli/pkg/contacts"
	pferrors "github.com/otherjamesbrown/contacts-cli/pkg/errors"
	"github.com/otherjamesbrown/contacts-cli/pkg/events"
	"github.com/otherjamesbrown/contacts-cli/pkg/extract"
	"github.com/otherjamesbrown/contacts-cli/pkg/logging"
	"github.com/otherjamesbrown/contacts-cli/pkg/observability"
	"github.com/otherjamesbrown/contacts-cli/pkg/source"
)

// ErrorPolicy decides what a failed file does to the run.
type ErrorPolicy string

const (
	// OnErrorSkip logs the failure, counts it and moves on.
	OnErrorSkip ErrorPolicy = "skip"
	// OnErrorAbort stops the run at the first failure.
	OnErrorAbort ErrorPolicy = "abort"
)

// IsValid returns true if the policy is recognised.
func (p ErrorPolicy) IsValid() bool {
	return p == OnErrorSkip || p == OnErrorAbort
}

// progressEventInterval is how many files pass between progress events.
const progressEventInterval = 10

// ProcessorConfig configures the batch processor.
type ProcessorConfig struct {
	// Input names the source in logs, spans and events.
	Input string

	// Output is reported in the completion event of a successful run.
	Output string

	// OnReadError is the policy for files that fail to read or extract.
	// Defaults to OnErrorSkip. Cancellation always aborts.
	OnReadError ErrorPolicy

	// RevealPII logs extracted values in clear at debug level. Otherwise
	// they are masked.
	RevealPII bool
}

// Result contains the result of an extraction run.
type Result struct {
	RunID          string            `json:"run_id" yaml:"run_id"`
	Mode           string            `json:"mode" yaml:"mode"`
	Input          string            `json:"input" yaml:"input"`
	TotalFiles     int               `json:"total_files" yaml:"total_files"`
	ExtractedCount int               `json:"extracted_count" yaml:"extracted_count"`
	SkippedCount   int               `json:"skipped_count" yaml:"skipped_count"`
	FailedCount    int               `json:"failed_count" yaml:"failed_count"`
	StartedAt      time.Time         `json:"started_at" yaml:"started_at"`
	CompletedAt    time.Time         `json:"completed_at" yaml:"completed_at"`
	Success        bool              `json:"success" yaml:"success"`
	Errors         []FileError       `json:"errors" yaml:"errors"`
	Records        []contacts.Record `json:"-" yaml:"-"`
}

// FileError records an error for a specific file.
type FileError struct {
	File  string             `json:"file" yaml:"file"`
	Code  pferrors.ErrorCode `json:"code" yaml:"code"`
	Error string             `json:"error" yaml:"error"`
}

// Processor runs one strategy over every document of a source, strictly in
// discovery order.
type Processor struct {
	cfg       ProcessorConfig
	source    source.Source
	strategy  extract.Strategy
	logger    logging.Logger
	metrics   *observability.ExtractMetrics
	tracer    *observability.Tracer
	publisher *events.Publisher
	onUpdate  func(ProgressSnapshot)

	progress *Progress
}

// Option customises a Processor.
type Option func(*Processor)

// WithMetrics records Prometheus metrics for the run.
func WithMetrics(m *observability.ExtractMetrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithTracer records spans with t instead of the global tracer.
func WithTracer(t *observability.Tracer) Option {
	return func(p *Processor) { p.tracer = t }
}

// WithPublisher publishes run events.
func WithPublisher(pub *events.Publisher) Option {
	return func(p *Processor) { p.publisher = pub }
}

// WithProgress registers a progress callback.
func WithProgress(fn func(ProgressSnapshot)) Option {
	return func(p *Processor) { p.onUpdate = fn }
}

// NewProcessor creates a new batch processor.
func NewProcessor(src source.Source, strategy extract.Strategy, logger logging.Logger, cfg ProcessorConfig, opts ...Option) *Processor {
	if cfg.OnReadError == "" {
		cfg.OnReadError = OnErrorSkip
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	p := &Processor{
		cfg:      cfg,
		source:   src,
		strategy: strategy,
		logger:   logger.With(logging.F("component", "batch_processor")),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = observability.NewTracer()
	}
	if p.publisher == nil {
		p.publisher = events.NewPublisher(logger)
	}
	return p
}

// Progress returns the progress tracker of the current or last run.
func (p *Processor) Progress() *Progress {
	return p.progress
}

// Process discovers every document and extracts it. On abort or
// cancellation it returns the classified error and no result.
func (p *Processor) Process(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	mode := p.strategy.Name()

	ctx = logging.WithRunID(ctx, runID)
	ctx, span := p.tracer.StartRunSpan(ctx, runID, mode, p.cfg.Input)
	defer span.End()
	runSpan := observability.NewSpanHelper(span)
	log := p.logger.WithContext(ctx).With(logging.F("mode", mode))

	result := &Result{
		RunID:     runID,
		Mode:      mode,
		Input:     p.cfg.Input,
		StartedAt: time.Now(),
		Errors:    []FileError{},
		Records:   []contacts.Record{},
	}

	entries, err := p.source.Discover(ctx)
	if err != nil {
		ee := pferrors.ClassifyError(err, pferrors.StageDiscover, p.cfg.Input)
		p.recordError(mode, ee)
		runSpan.SetError(ee, string(ee.Code), pferrors.IsRetryable(ee.Code))
		log.Error("Failed to discover files", logging.Err(ee), logging.F("input", p.cfg.Input))
		return nil, ee
	}

	result.TotalFiles = len(entries)
	p.progress = NewProgress(len(entries))
	p.progress.SetOnUpdate(p.onUpdate)
	p.progress.Start()

	log.Info("Starting extraction",
		logging.F("input", p.cfg.Input),
		logging.F("files", len(entries)),
		logging.F("on_read_error", string(p.cfg.OnReadError)))

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, p.abort(ctx, log, runSpan, result, pferrors.ClassifyError(err, "", ""))
		}

		p.progress.SetCurrentFile(entry.RelPath)
		out := p.processFile(ctx, entry)
		if err := p.recordOutcome(ctx, log, entry, out, result); err != nil {
			return nil, p.abort(ctx, log, runSpan, result, err)
		}

		if (i+1)%progressEventInterval == 0 {
			p.publishProgress(ctx, log, runID, mode)
		}
	}

	result.CompletedAt = time.Now()
	result.Success = result.FailedCount == 0
	p.progress.Complete(result.Success)

	duration := result.CompletedAt.Sub(result.StartedAt)
	if p.metrics != nil {
		p.metrics.RecordRun(mode, duration.Seconds(), float64(result.CompletedAt.Unix()))
	}
	runSpan.SetRunResult(result.TotalFiles, result.ExtractedCount, duration.Milliseconds())
	runSpan.SetSuccess()

	p.publishProgress(ctx, log, runID, mode)
	p.publishCompleted(ctx, log, result, events.StatusCompleted)

	log.Info("Extraction finished",
		logging.F("files", result.TotalFiles),
		logging.F("extracted", result.ExtractedCount),
		logging.F("skipped", result.SkippedCount),
		logging.F("failed", result.FailedCount),
		logging.F("duration", duration))

	return result, nil
}

// abort ends a run that will produce no output.
func (p *Processor) abort(ctx context.Context, log logging.Logger, runSpan *observability.SpanHelper, result *Result, ee *pferrors.ExtractError) error {
	result.CompletedAt = time.Now()
	status := events.StatusFailed
	if ee.Code == pferrors.ErrCodeContextCancelled {
		status = events.StatusCancelled
		p.progress.Cancel()
	} else {
		p.progress.Complete(false)
	}
	runSpan.SetError(ee, string(ee.Code), pferrors.IsRetryable(ee.Code))

	// The run context may be done; completion is still reported.
	p.publishCompleted(context.WithoutCancel(ctx), log, result, status)

	log.Error("Extraction aborted", logging.Err(ee), logging.F("code", string(ee.Code)))
	return ee
}

type fileStatus string

const (
	fileExtracted fileStatus = observability.StatusExtracted
	fileSkipped   fileStatus = observability.StatusSkipped
	fileFailed    fileStatus = observability.StatusFailed
)

type fileOutcome struct {
	status   fileStatus
	record   contacts.Record
	err      *pferrors.ExtractError
	bytes    int
	attempts int
	duration time.Duration
}

// processFile reads and extracts one document.
func (p *Processor) processFile(ctx context.Context, entry source.Entry) fileOutcome {
	start := time.Now()
	ctx, span := p.tracer.StartFileSpan(ctx, entry.RelPath)
	defer span.End()
	h := observability.NewSpanHelper(span)

	fail := func(stage string, err error, out fileOutcome) fileOutcome {
		ee := pferrors.ClassifyError(err, stage, entry.RelPath)
		h.SetError(ee, string(ee.Code), pferrors.IsRetryable(ee.Code))
		out.status = fileFailed
		out.err = ee
		out.duration = time.Since(start)
		return out
	}

	readCtx, readSpan := p.tracer.StartStageSpan(ctx, pferrors.StageRead)
	doc, err := p.source.Read(readCtx, entry)
	readSpan.End()
	if err != nil {
		return fail(pferrors.StageRead, err, fileOutcome{})
	}
	out := fileOutcome{bytes: len(doc.Text), attempts: doc.Attempts}

	extractCtx, extractSpan := p.tracer.StartStageSpan(ctx, pferrors.StageExtract)
	rec, err := p.strategy.Extract(extractCtx, doc)
	extractSpan.End()
	if err != nil {
		return fail(pferrors.StageExtract, err, out)
	}

	out.duration = time.Since(start)
	if rec == nil {
		out.status = fileSkipped
		h.SetFileResult(out.bytes, 0)
		h.SetSuccess()
		return out
	}

	matches := 0
	for _, n := range matchCounts(rec) {
		matches += n
	}
	out.status = fileExtracted
	out.record = rec
	h.SetFileResult(out.bytes, matches)
	h.SetSuccess()
	return out
}

// recordOutcome folds one file into the result. It returns an error when the
// run must stop.
func (p *Processor) recordOutcome(ctx context.Context, log logging.Logger, entry source.Entry, out fileOutcome, result *Result) *pferrors.ExtractError {
	mode := result.Mode
	params := events.FileProcessedParams{
		RunID:    result.RunID,
		Mode:     mode,
		File:     entry.RelPath,
		Status:   string(out.status),
		Duration: out.duration,
	}

	switch out.status {
	case fileExtracted:
		result.ExtractedCount++
		id := result.ExtractedCount
		out.record.Stamp(id, entry.Name, entry.RelPath)
		result.Records = append(result.Records, out.record)
		p.progress.RecordExtracted()

		counts := matchCounts(out.record)
		params.RecordID = id
		params.Emails = counts[observability.KindEmails]
		params.Phones = counts[observability.KindMobiles] + counts[observability.KindPhones]
		if p.metrics != nil {
			p.metrics.RecordRecord(mode, counts)
		}

		log.Debug("Record extracted",
			logging.F("file", entry.RelPath),
			logging.F("id", id),
			logging.F("summary", p.summarize(out.record)))

	case fileSkipped:
		result.SkippedCount++
		p.progress.RecordSkipped()
		log.Debug("No contact details found", logging.F("file", entry.RelPath))

	case fileFailed:
		result.FailedCount++
		result.Errors = append(result.Errors, FileError{
			File:  entry.RelPath,
			Code:  out.err.Code,
			Error: out.err.Error(),
		})
		p.progress.RecordFailed()
		p.recordError(mode, out.err)
		params.ErrorCode = string(out.err.Code)
	}

	if p.metrics != nil {
		p.metrics.RecordFile(mode, string(out.status), out.bytes, out.duration.Seconds())
		p.metrics.RecordRetries(mode, out.attempts-1)
	}
	if err := p.publisher.PublishFileProcessed(ctx, params); err != nil {
		log.Debug("File event not delivered", logging.Err(err))
	}

	if out.status != fileFailed {
		return nil
	}
	if ctx.Err() != nil || p.cfg.OnReadError == OnErrorAbort {
		return out.err
	}
	log.Warn("Skipping file",
		logging.F("file", entry.RelPath),
		logging.F("code", string(out.err.Code)),
		logging.Err(out.err))
	return nil
}

func (p *Processor) recordError(mode string, ee *pferrors.ExtractError) {
	if p.metrics != nil {
		p.metrics.RecordError(mode, string(ee.Code))
	}
}

func (p *Processor) publishProgress(ctx context.Context, log logging.Logger, runID, mode string) {
	if !p.publisher.Enabled() {
		return
	}
	snap := p.progress.Snapshot()
	current := snap.CurrentFile
	err := p.publisher.PublishJobProgress(ctx, events.JobProgressParams{
		RunID:                     runID,
		Mode:                      mode,
		TotalFiles:                snap.TotalFiles,
		ProcessedCount:            snap.ProcessedCount,
		ExtractedCount:            snap.ExtractedCount,
		SkippedCount:              snap.SkippedCount,
		FailedCount:               snap.FailedCount,
		CurrentFile:               &current,
		ElapsedSeconds:            snap.ElapsedSeconds,
		EstimatedRemainingSeconds: snap.EstimatedRemainingSeconds,
		Status:                    snap.Status,
	})
	if err != nil {
		log.Debug("Progress event not delivered", logging.Err(err))
	}
}

func (p *Processor) publishCompleted(ctx context.Context, log logging.Logger, result *Result, status string) {
	if !p.publisher.Enabled() {
		return
	}
	output := ""
	if status == events.StatusCompleted {
		output = p.cfg.Output
	}
	err := p.publisher.PublishJobCompleted(ctx, events.JobCompletedParams{
		RunID:          result.RunID,
		Mode:           result.Mode,
		Input:          result.Input,
		Output:         output,
		TotalFiles:     result.TotalFiles,
		ExtractedCount: result.ExtractedCount,
		SkippedCount:   result.SkippedCount,
		FailedCount:    result.FailedCount,
		StartedAt:      result.StartedAt,
		CompletedAt:    result.CompletedAt,
		Success:        status == events.StatusCompleted && result.FailedCount == 0,
		FinalStatus:    status,
	})
	if err != nil {
		log.Warn("Completion event not delivered", logging.Err(err))
	}
}

// matchCounts returns the number of matches per kind in a record.
func matchCounts(rec contacts.Record) map[string]int {
	switch r := rec.(type) {
	case *contacts.ContactRecord:
		return map[string]int{
			observability.KindEmails:    len(r.FileEmails),
			observability.KindMobiles:   len(r.FilePhones),
			observability.KindLandlines: len(r.FileLandline),
		}
	case *contacts.EntityRecord:
		return map[string]int{
			observability.KindEmails:       len(r.Extracted.Emails),
			observability.KindPhones:       len(r.Extracted.Phones),
			observability.KindAddressParts: len(r.Extracted.PossibleAddressParts),
		}
	default:
		return nil
	}
}

// summarize renders a record for debug logs, masked unless RevealPII is set.
func (p *Processor) summarize(rec contacts.Record) string {
	email := logging.MaskEmail
	phone := logging.MaskPhone
	if p.cfg.RevealPII {
		email = func(s string) string { return s }
		phone = email
	}

	switch r := rec.(type) {
	case *contacts.ContactRecord:
		return fmt.Sprintf("primary=%q person=%q company=%q emails=%v mobiles=%v landlines=%v",
			email(r.PrimaryEmail), r.PersonName, r.CompanyName,
			logging.MaskAll(r.FileEmails, email),
			logging.MaskAll(r.FilePhones, phone),
			logging.MaskAll(r.FileLandline, phone))
	case *contacts.EntityRecord:
		return fmt.Sprintf("emails=%v phones=%v address_parts=%d",
			logging.MaskAll(r.Extracted.Emails, email),
			logging.MaskAll(r.Extracted.Phones, phone),
			len(r.Extracted.PossibleAddressParts))
	default:
		return fmt.Sprintf("%T", rec)
	}
}
