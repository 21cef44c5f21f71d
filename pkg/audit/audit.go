// Package audit provides a structured audit trail of the report
// workflow: generation lifecycle, downloads, store activity. Events
// are appended as JSON lines so a compliance pipeline can tail the
// file without a schema migration step.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of audit event.
type EventType string

const (
	// Generation lifecycle
	EventGenerationStarted   EventType = "generation_started"
	EventGenerationCompleted EventType = "generation_completed"
	EventGenerationFailed    EventType = "generation_failed"

	// Download path
	EventDownloadRecorded EventType = "download_recorded"
	EventDownloadRejected EventType = "download_rejected"

	// Store lifecycle
	EventStoreOpened EventType = "store_opened"
	EventStoreClosed EventType = "store_closed"
)

// Event represents one audit trail entry.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      EventType              `json:"type"`
	ReportID  string                 `json:"report_id,omitempty"`
	ScanID    string                 `json:"scan_id,omitempty"`
	Message   string                 `json:"message"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Trail is the sink for audit events.
type Trail interface {
	Record(event Event)
}

// NopTrail discards all events.
type NopTrail struct{}

func (NopTrail) Record(Event) {}

// FileTrail appends events to a JSONL file.
type FileTrail struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewFileTrail opens (creating if needed) the audit file at path.
func NewFileTrail(path string) (*FileTrail, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &FileTrail{file: file, now: time.Now}, nil
}

// Record appends one event. Marshal or write failures are swallowed:
// the audit trail must never take the workflow down.
func (t *FileTrail) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = t.now()
	}
	line, err := json.Marshal(event)
	if err != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return
	}
	_, _ = t.file.Write(append(line, '\n'))
}

// Close flushes and closes the underlying file.
func (t *FileTrail) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// MemoryTrail captures events in memory for tests.
type MemoryTrail struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryTrail creates an empty in-memory trail.
func NewMemoryTrail() *MemoryTrail {
	return &MemoryTrail{}
}

func (t *MemoryTrail) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

// Events returns a copy of the captured events.
func (t *MemoryTrail) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Types returns the captured event types, in order.
func (t *MemoryTrail) Types() []EventType {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]EventType, len(t.events))
	for i, e := range t.events {
		out[i] = e.Type
	}
	return out
}

var (
	_ Trail = (*NopTrail)(nil)
	_ Trail = (*FileTrail)(nil)
	_ Trail = (*MemoryTrail)(nil)
)
