package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/breezynotcheezy/qhaven-qsgd/internal/estimator"
	"github.com/breezynotcheezy/qhaven-qsgd/internal/optim"
)

// Trace records the training run as JSON Lines, one event per line. It
// implements optim.Recorder.
//
// Every record carries the run id, so traces from multiple runs can be
// appended to the same file and separated afterwards.
type Trace struct {
	mu    sync.Mutex
	enc   *json.Encoder
	file  *os.File
	runID string
	now   func() time.Time
}

// traceEvent is the wire form of one trace line.
type traceEvent struct {
	Event    string                  `json:"event"`
	RunID    string                  `json:"run_id"`
	Time     time.Time               `json:"time"`
	Step     *optim.StepRecord       `json:"step,omitempty"`
	Estimate *estimator.CallMetadata `json:"estimate,omitempty"`
	AtStep   *int                    `json:"at_step,omitempty"`
	Reason   string                  `json:"reason,omitempty"`
}

// NewTrace writes trace events to w under a fresh run id.
func NewTrace(w io.Writer) *Trace {
	return &Trace{
		enc:   json.NewEncoder(w),
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

// OpenTrace appends trace events to the file at path, creating parent
// directories as needed.
func OpenTrace(path string) (*Trace, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	t := NewTrace(f)
	t.file = f
	return t, nil
}

// RunID returns the identifier stamped on every record of this trace.
func (t *Trace) RunID() string {
	return t.runID
}

// RecordStep implements optim.Recorder.
func (t *Trace) RecordStep(rec optim.StepRecord) {
	t.emit(traceEvent{Event: "step", Step: &rec})
}

// RecordEstimate implements optim.Recorder.
func (t *Trace) RecordEstimate(step int, meta estimator.CallMetadata) {
	t.emit(traceEvent{Event: "estimate", AtStep: &step, Estimate: &meta})
}

// RecordFallback implements optim.Recorder.
func (t *Trace) RecordFallback(step int, reason string) {
	t.emit(traceEvent{Event: "fallback", AtStep: &step, Reason: reason})
}

// Close syncs and closes the underlying file, when the trace owns one.
func (t *Trace) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	if err := t.file.Sync(); err != nil {
		t.file.Close()
		return fmt.Errorf("syncing trace file: %w", err)
	}
	return t.file.Close()
}

func (t *Trace) emit(ev traceEvent) {
	ev.RunID = t.runID
	ev.Time = t.now().UTC()
	t.mu.Lock()
	defer t.mu.Unlock()
	// A broken trace sink must never interrupt training.
	_ = t.enc.Encode(ev)
}

var _ optim.Recorder = (*Trace)(nil)
