// Package sim runs a mission: the fixed-rate tick engine, its scheduler and
// the frame pass that publishes poses and resolves collisions.
package sim

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/skyhussars/engine/internal/ai"
	"github.com/skyhussars/engine/internal/physics"
	"github.com/skyhussars/engine/internal/plane"
	"github.com/skyhussars/engine/internal/terrain"
	"github.com/skyhussars/engine/internal/worker"
)

// DefaultTicks is the simulation rate in ticks per second.
const DefaultTicks = 30

// WorldConfig configures a WorldThread.
type WorldConfig struct {
	Ticks       int
	Environment physics.Environment
	Terrain     terrain.Surface
	Pilot       ai.Config
	Pool        *worker.Pool
	Logger      *slog.Logger
}

// WorldThread advances every plane one tick at a time. The coarse lock covers
// all planes: integration and pose publication never overlap.
type WorldThread struct {
	mu     sync.Mutex
	cycle  atomic.Uint64
	tpf    float64
	planes []*plane.Plane
	pilots []*ai.Pilot
	world  ai.World
	env    physics.Environment
	pool   *worker.Pool
	logger *slog.Logger
}

// NewWorldThread assigns one pilot to every non-player plane.
func NewWorldThread(planes []*plane.Plane, cfg WorldConfig) *WorldThread {
	if cfg.Ticks <= 0 {
		cfg.Ticks = DefaultTicks
	}
	if cfg.Environment.Gravity == 0 {
		cfg.Environment = physics.NewEnvironment(physics.DefaultGravity)
	}
	if cfg.Terrain == nil {
		cfg.Terrain = terrain.Flat(0)
	}
	if cfg.Pilot == (ai.Config{}) {
		cfg.Pilot = ai.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	w := &WorldThread{
		tpf:    1 / float64(cfg.Ticks),
		planes: planes,
		world:  ai.World{Planes: planes, Terrain: cfg.Terrain},
		env:    cfg.Environment,
		pool:   cfg.Pool,
		logger: cfg.Logger,
	}
	for _, p := range planes {
		if !p.IsPlayer() {
			w.pilots = append(w.pilots, ai.NewPilot(p, cfg.Pilot))
		}
	}
	return w
}

// Tick integrates every plane, then runs every pilot against the updated
// world, then advances the cycle counter.
func (w *WorldThread) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	worker.ForEach(w.pool, w.planes, func(p *plane.Plane) {
		p.UpdatePhysics(w.tpf, w.env)
	})
	worker.ForEach(w.pool, w.pilots, func(p *ai.Pilot) {
		p.Update(w.world)
	})
	w.cycle.Add(1)
}

// UpdatePlaneLocations publishes every plane's pose and runs its guns, then
// calls visit for each plane in parallel. Ticks wait until it returns.
func (w *WorldThread) UpdatePlaneLocations(dt float64, visit func(*plane.Plane)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range w.planes {
		p.Update(dt)
	}
	if visit != nil {
		worker.ForEach(w.pool, w.planes, visit)
	}
}

// Locked runs fn while no tick is in progress.
func (w *WorldThread) Locked(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// Cycle is the number of completed ticks.
func (w *WorldThread) Cycle() uint64 {
	return w.cycle.Load()
}

// TPF is the tick duration in seconds.
func (w *WorldThread) TPF() float64 {
	return w.tpf
}

func (w *WorldThread) Planes() []*plane.Plane {
	return w.planes
}

func (w *WorldThread) Pilots() []*ai.Pilot {
	return w.pilots
}

func (w *WorldThread) Terrain() terrain.Surface {
	return w.world.Terrain
}
