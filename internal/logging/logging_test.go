package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestSetup_EmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: "debug", Output: &buf})

	logger.Info("query_served", slog.Int("fragments", 3))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "query_served", record["msg"])
	assert.EqualValues(t, 3, record["fragments"])
}

func TestSetup_LevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{Level: "error", Output: &buf})

	logger.Info("suppressed")
	logger.Error("kept")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "kept")
}

func TestTracer_RecordsOneLinePerQuery(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewTracerWriter(&buf)

	require.NoError(t, tracer.Record(TraceEntry{
		Query:     "annual leave",
		ElapsedMS: 12,
		Results: []TraceResult{
			{FragmentID: 4, Source: "leave.txt", Score: 0.82},
			{FragmentID: 1, Source: "leave.txt", Score: 0.41},
		},
	}))
	require.NoError(t, tracer.Record(TraceEntry{Query: "expenses"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry TraceEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "annual leave", entry.Query)
	assert.False(t, entry.Time.IsZero(), "timestamp must be stamped")
	require.Len(t, entry.Results, 2)
	assert.Equal(t, 4, entry.Results[0].FragmentID)
	assert.InDelta(t, 0.82, entry.Results[0].Score, 1e-9)
}

func TestTracer_NilIsNoOp(t *testing.T) {
	var tracer *Tracer
	assert.NoError(t, tracer.Record(TraceEntry{Query: "anything"}))
	assert.NoError(t, tracer.Close())
}

func TestNewTracer_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace", "queries.log")
	tracer, err := NewTracer(path)
	require.NoError(t, err)

	require.NoError(t, tracer.Record(TraceEntry{Query: "remote work"}))
	require.NoError(t, tracer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"query":"remote work"`)
}

func TestRotatingWriter_RotatesAtSizeLimit(t *testing.T) {
	// Given: a 1 MB limit
	path := filepath.Join(t.TempDir(), "trace.log")
	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	defer w.Close()

	// When: writing past the limit
	chunk := bytes.Repeat([]byte("x"), 512*1024)
	for i := 0; i < 3; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}

	// Then: a rotated file exists alongside the live one
	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + ".1")
	assert.NoError(t, err)
}
