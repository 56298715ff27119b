// Package events publishes extraction run events for downstream consumers.
//
// Events carry counts and file names only. Extracted addresses and numbers
// never leave the output file through this channel.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Channels events are published on.
const (
	ChannelFileProcessed = "events.extract.file_processed"
	ChannelJobProgress   = "events.extract.job_progress"
	ChannelJobCompleted  = "events.extract.job_completed"
)

// Job status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// NewBaseEvent creates a BaseEvent with a fresh id.
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    "contacts",
		Version:   "1.0",
	}
}

// FileProcessedEvent is published once per visited file.
type FileProcessedEvent struct {
	BaseEvent

	RunID      string `json:"run_id"`
	Mode       string `json:"mode"`
	File       string `json:"file"`
	Status     string `json:"status"`
	RecordID   int    `json:"record_id,omitempty"`
	Emails     int    `json:"emails"`
	Phones     int    `json:"phones"`
	ErrorCode  string `json:"error_code,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// JobProgressEvent is published periodically during a run.
type JobProgressEvent struct {
	BaseEvent

	RunID string `json:"run_id"`
	Mode  string `json:"mode"`

	TotalFiles     int `json:"total_files"`
	ProcessedCount int `json:"processed_count"`
	ExtractedCount int `json:"extracted_count"`
	SkippedCount   int `json:"skipped_count"`
	FailedCount    int `json:"failed_count"`

	CurrentFile               *string  `json:"current_file,omitempty"`
	ElapsedSeconds            float64  `json:"elapsed_seconds"`
	EstimatedRemainingSeconds *float64 `json:"estimated_remaining_seconds,omitempty"`
	Status                    string   `json:"status"`
}

// JobCompletedEvent is published when a run finishes, successfully or not.
type JobCompletedEvent struct {
	BaseEvent

	RunID  string `json:"run_id"`
	Mode   string `json:"mode"`
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`

	TotalFiles     int `json:"total_files"`
	ExtractedCount int `json:"extracted_count"`
	SkippedCount   int `json:"skipped_count"`
	FailedCount    int `json:"failed_count"`

	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	DurationSeconds float64   `json:"duration_seconds"`

	Success     bool   `json:"success"`
	FinalStatus string `json:"final_status"`
}
