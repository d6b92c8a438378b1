package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/internal/dispatcher"
)

var _ dispatcher.Logger = (*DispatcherLogger)(nil)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]any
		require.NoError(t, dec.Decode(&entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestDispatcherLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	dl.Debug("handling event", "command", ":FLIGHT:STATE:", "frame", 120)
	dl.Info("handlers registered", "count", 8)
	dl.Warn("queue filling", "command", ":FIRED:", "depth", 9000)
	dl.Error("event failed", "command", ":HIT:", "error", errors.New("storage closed"))

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 4)
	for i, level := range []string{"debug", "info", "warn", "error"} {
		assert.Equal(t, level, entries[i]["level"])
		assert.Equal(t, "dispatcher", entries[i]["component"])
	}
	assert.Equal(t, ":FLIGHT:STATE:", entries[0]["command"])
	assert.Equal(t, float64(120), entries[0]["frame"])
	assert.Equal(t, float64(8), entries[1]["count"])
	assert.Equal(t, float64(9000), entries[2]["depth"])
	assert.Equal(t, "event failed", entries[3]["message"])
	assert.Equal(t, "storage closed", entries[3]["error"])
}

func TestDispatcherLogger_MalformedPairs(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Info("crash recorded", "plane", "red-1", 42, "not a key", "dangling")

	entries := decodeEntries(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "red-1", entries[0]["plane"])
	assert.NotContains(t, entries[0], "dangling")
	assert.Len(t, entries[0], 4) // level, component, plane, message
}

func TestDispatcherLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	dl.Debug("handling event", "command", ":PERF:")
	assert.Empty(t, buf.String())
}

func TestDispatcherLogger_SampledKeepsErrors(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(Sampled(zerolog.New(&buf)))

	for frame := range 30 {
		dl.Info("handling event", "frame", frame)
	}
	buf.Reset()
	for frame := range 10 {
		dl.Error("event failed", "frame", frame)
	}

	assert.Len(t, decodeEntries(t, &buf), 10)
}
