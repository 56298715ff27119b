// Package batch runs an extraction strategy over every document of a source.
package batch

import (
	"sync"
	"time"
)

// Progress status values.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Progress tracks the progress of an extraction run.
type Progress struct {
	mu sync.RWMutex

	// Counts
	TotalFiles     int
	ProcessedCount int
	ExtractedCount int
	SkippedCount   int
	FailedCount    int

	// Current state
	CurrentFile    string
	Status         string
	processedFiles []string

	// Timing
	StartedAt time.Time
	UpdatedAt time.Time

	onUpdate func(ProgressSnapshot)
}

// NewProgress creates a new progress tracker.
func NewProgress(totalFiles int) *Progress {
	return &Progress{
		TotalFiles: totalFiles,
		Status:     StatusPending,
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// SetOnUpdate sets a callback called after each update, outside the lock
// and on the caller's goroutine, so updates arrive in order.
func (p *Progress) SetOnUpdate(fn func(ProgressSnapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Start marks the progress as started.
func (p *Progress) Start() {
	p.update(func() {
		p.Status = StatusRunning
		p.StartedAt = time.Now()
	})
}

// SetCurrentFile updates the current file being processed.
func (p *Progress) SetCurrentFile(path string) {
	p.update(func() {
		p.CurrentFile = path
	})
}

// RecordExtracted increments the extracted and processed counts.
func (p *Progress) RecordExtracted() {
	p.update(func() {
		p.ExtractedCount++
		p.markProcessed()
	})
}

// RecordSkipped increments the skipped and processed counts.
func (p *Progress) RecordSkipped() {
	p.update(func() {
		p.SkippedCount++
		p.markProcessed()
	})
}

// RecordFailed increments the failed and processed counts.
func (p *Progress) RecordFailed() {
	p.update(func() {
		p.FailedCount++
		p.markProcessed()
	})
}

// ProcessedFiles returns a copy of the list of processed file paths.
func (p *Progress) ProcessedFiles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]string, len(p.processedFiles))
	copy(result, p.processedFiles)
	return result
}

// Complete marks the progress as completed.
func (p *Progress) Complete(success bool) {
	p.update(func() {
		if success {
			p.Status = StatusCompleted
		} else {
			p.Status = StatusFailed
		}
	})
}

// Cancel marks the progress as cancelled.
func (p *Progress) Cancel() {
	p.update(func() {
		p.Status = StatusCancelled
	})
}

// Snapshot returns a read-only copy of the current progress.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// markProcessed must be called with the lock held.
func (p *Progress) markProcessed() {
	p.ProcessedCount++
	if p.CurrentFile != "" {
		p.processedFiles = append(p.processedFiles, p.CurrentFile)
	}
}

// update applies fn under the lock, then notifies the callback.
func (p *Progress) update(fn func()) {
	p.mu.Lock()
	fn()
	p.UpdatedAt = time.Now()
	cb := p.onUpdate
	var snap ProgressSnapshot
	if cb != nil {
		snap = p.snapshotLocked()
	}
	p.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

func (p *Progress) snapshotLocked() ProgressSnapshot {
	elapsed := time.Since(p.StartedAt).Seconds()
	var estimatedRemaining *float64
	if p.ProcessedCount > 0 {
		remaining := p.TotalFiles - p.ProcessedCount
		rate := elapsed / float64(p.ProcessedCount)
		est := rate * float64(remaining)
		estimatedRemaining = &est
	}

	return ProgressSnapshot{
		TotalFiles:                p.TotalFiles,
		ProcessedCount:            p.ProcessedCount,
		ExtractedCount:            p.ExtractedCount,
		SkippedCount:              p.SkippedCount,
		FailedCount:               p.FailedCount,
		CurrentFile:               p.CurrentFile,
		Status:                    p.Status,
		StartedAt:                 p.StartedAt,
		ElapsedSeconds:            elapsed,
		EstimatedRemainingSeconds: estimatedRemaining,
	}
}

// ProgressSnapshot is an immutable snapshot of progress state.
type ProgressSnapshot struct {
	TotalFiles                int
	ProcessedCount            int
	ExtractedCount            int
	SkippedCount              int
	FailedCount               int
	CurrentFile               string
	Status                    string
	StartedAt                 time.Time
	ElapsedSeconds            float64
	EstimatedRemainingSeconds *float64
}

// PercentComplete returns the percentage of files processed.
func (s ProgressSnapshot) PercentComplete() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return float64(s.ProcessedCount) / float64(s.TotalFiles) * 100
}

// IsComplete returns true if all files have been processed.
func (s ProgressSnapshot) IsComplete() bool {
	return s.ProcessedCount >= s.TotalFiles
}

// IsSuccess returns true if the run completed with no failed files.
func (s ProgressSnapshot) IsSuccess() bool {
	return s.Status == StatusCompleted && s.FailedCount == 0
}
