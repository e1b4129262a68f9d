package logging

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// TraceResult is one retrieved fragment in a trace entry.
type TraceResult struct {
	FragmentID int     `json:"fragment_id"`
	Source     string  `json:"source"`
	Score      float64 `json:"score"`
}

// TraceEntry is one query, recorded as a single JSON line.
type TraceEntry struct {
	Time      time.Time     `json:"time"`
	Query     string        `json:"query"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Results   []TraceResult `json:"results"`
}

// Tracer appends retrieval traces to a writer, one JSON line per query.
// The zero-value nil *Tracer is a no-op, so callers never branch on
// whether tracing is configured.
type Tracer struct {
	mu  sync.Mutex
	out io.Writer
	c   io.Closer
}

// NewTracer writes traces to the rotating file at path.
func NewTracer(path string) (*Tracer, error) {
	w, err := NewRotatingWriter(path, 10, 5)
	if err != nil {
		return nil, err
	}
	return &Tracer{out: w, c: w}, nil
}

// NewTracerWriter writes traces to an arbitrary writer.
func NewTracerWriter(out io.Writer) *Tracer {
	return &Tracer{out: out}
}

// Record appends one trace entry. Entries missing a timestamp are stamped
// with the current time.
func (t *Tracer) Record(entry TraceEntry) error {
	if t == nil {
		return nil
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err = t.out.Write(line)
	return err
}

// Close closes the underlying file, if any.
func (t *Tracer) Close() error {
	if t == nil || t.c == nil {
		return nil
	}
	return t.c.Close()
}
