// Package observability provides Prometheus metrics and OpenTelemetry spans
// for extraction runs.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File status label values. Skipped files held no match.
const (
	StatusExtracted = "extracted"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Match kind label values.
const (
	KindEmails       = "emails"
	KindMobiles      = "mobiles"
	KindLandlines    = "landlines"
	KindPhones       = "phones"
	KindAddressParts = "address_parts"
)

// ExtractMetrics holds all Prometheus metrics for an extraction run.
type ExtractMetrics struct {
	FilesTotal         *prometheus.CounterVec
	FileSeconds        *prometheus.HistogramVec
	InputBytesTotal    *prometheus.CounterVec
	RecordsTotal       *prometheus.CounterVec
	MatchesTotal       *prometheus.CounterVec
	ReadRetriesTotal   *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	RunDurationSeconds *prometheus.GaugeVec
	LastRunTimestamp   *prometheus.GaugeVec
}

// NewExtractMetrics creates the extraction metrics on reg. Passing a fresh
// registry per run keeps repeated runs in one process from colliding.
func NewExtractMetrics(reg prometheus.Registerer) *ExtractMetrics {
	factory := promauto.With(reg)

	return &ExtractMetrics{
		FilesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contacts_files_total",
				Help: "Files visited, by outcome",
			},
			[]string{"mode", "status"},
		),
		FileSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "contacts_file_seconds",
				Help:    "Time to read and extract one file",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"mode"},
		),
		InputBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contacts_input_bytes_total",
				Help: "Bytes of input text read",
			},
			[]string{"mode"},
		),
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contacts_records_total",
				Help: "Records emitted",
			},
			[]string{"mode"},
		),
		MatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contacts_matches_total",
				Help: "Distinct matches across emitted records, by kind",
			},
			[]string{"mode", "kind"},
		),
		ReadRetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contacts_read_retries_total",
				Help: "Read attempts beyond the first",
			},
			[]string{"mode"},
		),
		ErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contacts_errors_total",
				Help: "Classified errors, by code",
			},
			[]string{"mode", "code"},
		),
		RunDurationSeconds: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "contacts_run_duration_seconds",
				Help: "Wall time of the last run",
			},
			[]string{"mode"},
		),
		LastRunTimestamp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "contacts_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
			[]string{"mode"},
		),
	}
}

// RecordFile records the outcome and latency of one file.
func (m *ExtractMetrics) RecordFile(mode, status string, bytes int, seconds float64) {
	m.FilesTotal.WithLabelValues(mode, status).Inc()
	m.FileSeconds.WithLabelValues(mode).Observe(seconds)
	if bytes > 0 {
		m.InputBytesTotal.WithLabelValues(mode).Add(float64(bytes))
	}
}

// RecordRecord records one emitted record and its match counts by kind.
func (m *ExtractMetrics) RecordRecord(mode string, matches map[string]int) {
	m.RecordsTotal.WithLabelValues(mode).Inc()
	for kind, n := range matches {
		if n > 0 {
			m.MatchesTotal.WithLabelValues(mode, kind).Add(float64(n))
		}
	}
}

// RecordRetries records read attempts beyond the first.
func (m *ExtractMetrics) RecordRetries(mode string, n int) {
	if n > 0 {
		m.ReadRetriesTotal.WithLabelValues(mode).Add(float64(n))
	}
}

// RecordError records a classified error.
func (m *ExtractMetrics) RecordError(mode, code string) {
	m.ErrorsTotal.WithLabelValues(mode, code).Inc()
}

// RecordRun records the end of a run.
func (m *ExtractMetrics) RecordRun(mode string, seconds float64, finishedUnix float64) {
	m.RunDurationSeconds.WithLabelValues(mode).Set(seconds)
	m.LastRunTimestamp.WithLabelValues(mode).Set(finishedUnix)
}

// WriteTextfile writes everything gathered by g to path in the Prometheus
// text format, for pickup by a node exporter textfile collector.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
