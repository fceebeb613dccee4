// Package telemetry provides a JSONL event stream for recording engine
// activity. Every ranking pass, outcome recording, cascade unblock, and
// swallowed persistence failure is recorded as a structured JSON event,
// making behavior auditable without wiring a logger into the engines.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event kinds identify the type of telemetry event.
const (
	KindRank           = "rank"
	KindCompleted      = "completed"
	KindDeferred       = "deferred"
	KindUnblocked      = "unblocked"
	KindNotifyGate     = "notify_gate"
	KindSaveFailed     = "save_failed"
	KindLoadFailed     = "load_failed"
	KindContextLearned = "context_learned"
)

// Event represents a single telemetry record. Each event carries a
// timestamp, a kind tag, and an optional task identifier along with
// arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	TaskID    string    `json:"task,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for
// concurrent use by multiple goroutines. A nil *Emitter is a valid
// no-op emitter, so callers never need to guard emission sites.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file
// at path. The file is created if it does not exist, or appended to if
// it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event to the JSONL file. It is safe for
// concurrent use. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Record is a convenience wrapper that stamps the current time and
// drops the write error: telemetry must never fail an engine call.
func (e *Emitter) Record(kind, taskID string, data any) {
	_ = e.Emit(Event{Timestamp: time.Now(), Kind: kind, TaskID: taskID, Data: data})
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
