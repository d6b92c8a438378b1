package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// SinkHandler sends each record to every sink whose level admits it: the
// console/file text sink, Graylog and OTel. A failing sink does not stop the
// others; their errors are joined.
type SinkHandler struct {
	sinks []slog.Handler
}

func NewSinkHandler(sinks ...slog.Handler) *SinkHandler {
	return &SinkHandler{sinks: slices.DeleteFunc(slices.Clone(sinks), func(h slog.Handler) bool { return h == nil })}
}

func (s *SinkHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(s.sinks, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (s *SinkHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range s.sinks {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (s *SinkHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return s.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (s *SinkHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return s.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (s *SinkHandler) derive(f func(slog.Handler) slog.Handler) *SinkHandler {
	sinks := make([]slog.Handler, len(s.sinks))
	for i, h := range s.sinks {
		sinks[i] = f(h)
	}
	return &SinkHandler{sinks: sinks}
}

// ContextProvider returns the attributes of whatever is running right now,
// e.g. the mission and the current frame.
type ContextProvider func() []slog.Attr

// MissionHandler stamps every record with the provider's attributes. They are
// read at log time, so a long-lived logger follows mission changes, and they
// precede the call's own attributes so text lines line up by mission and frame.
type MissionHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

func NewMissionHandler(inner slog.Handler, provider ContextProvider) *MissionHandler {
	return &MissionHandler{inner: inner, provider: provider}
}

func (h *MissionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *MissionHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider == nil {
		return h.inner.Handle(ctx, r)
	}
	stamped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	stamped.AddAttrs(h.provider()...)
	r.Attrs(func(a slog.Attr) bool {
		stamped.AddAttrs(a)
		return true
	})
	return h.inner.Handle(ctx, stamped)
}

func (h *MissionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MissionHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *MissionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &MissionHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}
