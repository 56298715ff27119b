package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type failingSink struct{ closed bool }

func (f *failingSink) Send(ctx context.Context, channel string, payload []byte) error {
	return errors.New("broker down")
}

func (f *failingSink) Close() error {
	f.closed = true
	return nil
}

func decodeLines(t *testing.T, data []byte) []fileLine {
	t.Helper()
	var lines []fileLine
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var l fileLine
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			t.Fatalf("invalid event line %q: %v", sc.Text(), err)
		}
		lines = append(lines, l)
	}
	return lines
}

func TestBaseEvent(t *testing.T) {
	event := NewBaseEvent("test.event")

	if event.EventType != "test.event" {
		t.Errorf("unexpected event type: %s", event.EventType)
	}
	if event.Source != "contacts" {
		t.Errorf("unexpected source: %s", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("unexpected version: %s", event.Version)
	}
	if event.EventID == "" {
		t.Error("event id should be generated")
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
	if other := NewBaseEvent("test.event"); other.EventID == event.EventID {
		t.Error("event ids should be unique")
	}
}

func TestPublisher_WriterSink(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPublisher(nil, NewWriterSink(buf))
	ctx := context.Background()

	if !p.Enabled() {
		t.Fatal("publisher with a sink should be enabled")
	}

	if err := p.PublishFileProcessed(ctx, FileProcessedParams{
		RunID:    "run-1",
		Mode:     "heuristic",
		File:     "a.pdf.txt",
		Status:   "extracted",
		RecordID: 1,
		Emails:   2,
		Duration: 1500 * time.Microsecond,
	}); err != nil {
		t.Fatalf("PublishFileProcessed: %v", err)
	}

	current := "b.pdf.txt"
	if err := p.PublishJobProgress(ctx, JobProgressParams{
		RunID:          "run-1",
		TotalFiles:     2,
		ProcessedCount: 1,
		CurrentFile:    &current,
		Status:         StatusRunning,
	}); err != nil {
		t.Fatalf("PublishJobProgress: %v", err)
	}

	start := time.Now().Add(-2 * time.Second)
	if err := p.PublishJobCompleted(ctx, JobCompletedParams{
		RunID:          "run-1",
		Mode:           "heuristic",
		Input:          "docs",
		Output:         "extracted_contacts.json",
		TotalFiles:     2,
		ExtractedCount: 1,
		SkippedCount:   1,
		StartedAt:      start,
		CompletedAt:    start.Add(2 * time.Second),
		Success:        true,
		FinalStatus:    StatusCompleted,
	}); err != nil {
		t.Fatalf("PublishJobCompleted: %v", err)
	}

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 3 {
		t.Fatalf("expected 3 event lines, got %d", len(lines))
	}

	wantChannels := []string{ChannelFileProcessed, ChannelJobProgress, ChannelJobCompleted}
	for i, want := range wantChannels {
		if lines[i].Channel != want {
			t.Errorf("line %d channel = %s, want %s", i, lines[i].Channel, want)
		}
	}

	var file FileProcessedEvent
	if err := json.Unmarshal(lines[0].Event, &file); err != nil {
		t.Fatal(err)
	}
	if file.File != "a.pdf.txt" || file.RecordID != 1 || file.Emails != 2 || file.DurationMs != 1 {
		t.Errorf("unexpected file event: %+v", file)
	}

	var done JobCompletedEvent
	if err := json.Unmarshal(lines[2].Event, &done); err != nil {
		t.Fatal(err)
	}
	if done.DurationSeconds != 2 {
		t.Errorf("duration = %f, want 2", done.DurationSeconds)
	}
	if !done.Success || done.FinalStatus != StatusCompleted {
		t.Errorf("unexpected completion: %+v", done)
	}
}

func TestPublisher_NoSinks(t *testing.T) {
	p := NewPublisher(nil)
	if p.Enabled() {
		t.Error("publisher without sinks should be disabled")
	}
	if err := p.PublishJobProgress(context.Background(), JobProgressParams{}); err != nil {
		t.Errorf("disabled publisher should not fail: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPublisher_FailingSinkDoesNotBlockOthers(t *testing.T) {
	buf := &bytes.Buffer{}
	bad := &failingSink{}
	p := NewPublisher(nil, bad, NewWriterSink(buf))

	err := p.PublishJobProgress(context.Background(), JobProgressParams{RunID: "run-1"})
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if len(decodeLines(t, buf.Bytes())) != 1 {
		t.Error("healthy sink should still receive the event")
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if !bad.closed {
		t.Error("Close should close every sink")
	}
}

func TestOpenFileSink_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for i := 0; i < 2; i++ {
		sink, err := OpenFileSink(path)
		if err != nil {
			t.Fatalf("OpenFileSink: %v", err)
		}
		p := NewPublisher(nil, sink)
		if err := p.PublishJobProgress(context.Background(), JobProgressParams{RunID: "run"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
		if err := p.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(decodeLines(t, data)); n != 2 {
		t.Errorf("expected 2 appended lines, got %d", n)
	}
}

func TestWriterSink_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewWriterSink(&bytes.Buffer{}).Send(ctx, ChannelJobProgress, []byte(`{}`)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDialRedis_BadURL(t *testing.T) {
	if _, err := DialRedis(context.Background(), "not-a-url://", time.Second); err == nil {
		t.Error("expected error for invalid url")
	}
}

func TestDialRedis_Live(t *testing.T) {
	url := os.Getenv("CONTACTS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CONTACTS_TEST_REDIS_URL not set")
	}

	sink, err := DialRedis(context.Background(), url, 2*time.Second)
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	defer sink.Close()

	p := NewPublisher(nil, sink)
	if err := p.PublishJobProgress(context.Background(), JobProgressParams{RunID: "live"}); err != nil {
		t.Errorf("publish: %v", err)
	}
}
