package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout redirects the console sink to a pipe and returns a function
// that restores it and returns what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	orig := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = orig
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}

func TestSetup_FileReplacesConsole(t *testing.T) {
	restore := captureStdout(t)

	var file bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil)
	m.Logger().Info("plane spawned", "plane", "p80-1")

	stdout := restore()

	assert.Contains(t, file.String(), "plane spawned")
	assert.Contains(t, file.String(), "plane=p80-1")
	assert.Empty(t, stdout)
}

func TestSetup_ConsoleWithoutFile(t *testing.T) {
	restore := captureStdout(t)

	m := NewSlogManager()
	m.Setup(nil, "info", nil)
	m.Logger().Info("scheduler started", "ticks", 30)

	assert.Contains(t, restore(), "scheduler started")
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)

			m.Logger().Debug("integrated", "frame", 12)
			m.Logger().Info("frame published", "frame", 12)

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("integrated")))
			assert.Contains(t, buf.String(), "frame published")
		})
	}
}

func TestSetup_SecondCallSwitchesFile(t *testing.T) {
	var before, after bytes.Buffer
	m := NewSlogManager()

	m.Setup(&before, "info", nil)
	m.Logger().Info("bootstrap")

	m.Setup(&after, "info", nil)
	m.Logger().Info("mission started")

	assert.Contains(t, before.String(), "bootstrap")
	assert.NotContains(t, before.String(), "mission started")
	assert.Contains(t, after.String(), "mission started")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestFlush(t *testing.T) {
	m := NewSlogManager()
	assert.NoError(t, m.Flush(context.Background()))

	var buf bytes.Buffer
	m.Setup(&buf, "info", sdklog.NewLoggerProvider())
	m.Logger().Info("tick overrun", "overruns", 1)
	assert.Contains(t, buf.String(), "tick overrun")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestWriteLog_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		t.Run(level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, "debug", nil)

			m.WriteLog("RecordCrash", "crash recorded", level)

			assert.Contains(t, buf.String(), "crash recorded")
			assert.Contains(t, buf.String(), "function=RecordCrash")
		})
	}

	// no logger yet, nothing to write to
	NewSlogManager().WriteLog("RecordCrash", "crash recorded", "info")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), tt.input)
	}
}

func TestSetupWith_GraylogAndContext(t *testing.T) {
	var file, gl bytes.Buffer
	m := NewSlogManager()
	m.SetupWith(Options{
		File:    &file,
		Graylog: &gl,
		Level:   "info",
		Context: func() []slog.Attr {
			return []slog.Attr{slog.String("mission", "Dogfight"), slog.Uint64("frame", 42)}
		},
	})

	m.Logger().Info("plane spawned", "plane", "player")

	assert.Contains(t, file.String(), "mission=Dogfight frame=42 plane=player")
	assert.Contains(t, gl.String(), `"msg":"plane spawned"`)
	assert.Contains(t, gl.String(), `"frame":42`)
	assert.Contains(t, gl.String(), `"plane":"player"`)
}
