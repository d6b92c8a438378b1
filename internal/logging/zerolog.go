package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
)

// ZerologOptions selects the sinks of NewZerolog.
type ZerologOptions struct {
	// File receives uncoloured console output.
	File  io.Writer
	Level string
	// Console receives coloured output; nil disables it.
	Console io.Writer
	// Graylog receives raw JSON events.
	Graylog io.Writer
	// Hook adds runtime fields to every event.
	Hook func(e *zerolog.Event)
}

// ParseZerologLevel converts a string log level to zerolog.Level.
func ParseZerologLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewZerolog builds the zerolog logger used by the database and dispatcher layers.
func NewZerolog(opts ZerologOptions) zerolog.Logger {
	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.RFC3339,
		})
	}
	if opts.File != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.File,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}
	if opts.Graylog != nil {
		writers = append(writers, opts.Graylog)
	}
	if len(writers) == 0 {
		return zerolog.Nop()
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseZerologLevel(opts.Level)).
		With().Timestamp().Logger()

	if opts.Hook != nil {
		hook := opts.Hook
		logger = logger.Hook(zerolog.HookFunc(func(e *zerolog.Event, _ zerolog.Level, _ string) {
			hook(e)
		}))
	}
	return logger
}

// Sampled limits debug and info entries of a chatty logger to 5 per 10
// seconds per level, then 1 in 100. Warnings and errors are never dropped.
func Sampled(logger zerolog.Logger) zerolog.Logger {
	burst := func() zerolog.Sampler {
		return &zerolog.BurstSampler{
			Burst:       5,
			Period:      10 * time.Second,
			NextSampler: &zerolog.BasicSampler{N: 100},
		}
	}
	return logger.With().Bool("sampled", true).Logger().Sample(zerolog.LevelSampler{
		DebugSampler: burst(),
		InfoSampler:  burst(),
	})
}

// NewGraylogWriter connects a UDP GELF writer to addr.
func NewGraylogWriter(addr, facility string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to graylog at %s: %w", addr, err)
	}
	w.Facility = facility
	return w, nil
}
