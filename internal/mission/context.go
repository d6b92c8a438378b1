package mission

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/skyhussars/engine/pkg/core"
)

// Context holds the current mission and world state
type Context struct {
	mu      sync.RWMutex
	Mission *core.Mission
	World   *core.World

	frame atomic.Uint64
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		Mission: &core.Mission{Name: "No mission loaded"},
		World:   &core.World{Name: "No world loaded"},
	}
}

// GetMission returns the current mission
func (mc *Context) GetMission() *core.Mission {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.Mission
}

// GetWorld returns the current world
func (mc *Context) GetWorld() *core.World {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.World
}

// SetMission sets the current mission and world
func (mc *Context) SetMission(mission *core.Mission, world *core.World) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Mission = mission
	mc.World = world
	mc.frame.Store(0)
}

// SetFrame records the last simulated frame.
func (mc *Context) SetFrame(f core.Frame) {
	mc.frame.Store(uint64(f))
}

// Frame returns the last simulated frame.
func (mc *Context) Frame() core.Frame {
	return core.Frame(mc.frame.Load())
}

// Attrs returns the mission attributes added to every slog record.
func (mc *Context) Attrs() []slog.Attr {
	m := mc.GetMission()
	return []slog.Attr{
		slog.String("mission", m.Name),
		slog.String("missionId", m.ID.String()),
		slog.Uint64("frame", uint64(mc.Frame())),
	}
}

// Hook adds the same attributes to zerolog events.
func (mc *Context) Hook(e *zerolog.Event) {
	m := mc.GetMission()
	e.Str("mission", m.Name).
		Str("missionId", m.ID.String()).
		Uint64("frame", uint64(mc.Frame()))
}
