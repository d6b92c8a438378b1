package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/metric"

	"github.com/skyhussars/engine/internal/mission"
	"github.com/skyhussars/engine/internal/plane"
	"github.com/skyhussars/engine/internal/terrain"
	"github.com/skyhussars/engine/internal/weapons"
	"github.com/skyhussars/engine/pkg/core"
)

// DefaultSampleTicks is how often, in ticks, flight states are recorded.
const DefaultSampleTicks = 30

// PlayerRespawn is where ReinitPlayer puts the player.
var PlayerRespawn = mgl64.Vec3{0, 3000, 0}

// ErrPlayerCount is returned when a mission does not have exactly one player plane.
var ErrPlayerCount = errors.New("mission needs exactly one player plane")

// Speedometer shows the player's speed.
type Speedometer interface {
	SetText(text string)
}

// Audio is the mission-wide sound control.
type Audio interface {
	Update()
	MuteAll()
}

// Options configures the frame pass.
type Options struct {
	SampleTicks int
	Speedometer Speedometer
	Audio       Audio
	Recorder    *Recorder
	Context     *mission.Context
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Mission is one running mission. The tick engine runs on the scheduler;
// Update is the frame pass and is called by the render or headless loop.
type Mission struct {
	mu          sync.Mutex
	world       *WorldThread
	scheduler   *Scheduler
	projectiles *weapons.Manager
	player      *plane.Plane
	opts        Options

	paused atomic.Bool
	ended  atomic.Bool

	frames     uint64
	lastSample uint64
	sampled    bool
	gauge      metric.Registration
	closeOnce  sync.Once
}

// NewMission wires the frame pass around a world and its projectiles.
func NewMission(world *WorldThread, projectiles *weapons.Manager, opts Options) (*Mission, error) {
	var player *plane.Plane
	for _, p := range world.Planes() {
		if !p.IsPlayer() {
			continue
		}
		if player != nil {
			return nil, fmt.Errorf("%w: found more than one", ErrPlayerCount)
		}
		player = p
	}
	if player == nil {
		return nil, fmt.Errorf("%w: found none", ErrPlayerCount)
	}

	if opts.SampleTicks <= 0 {
		opts.SampleTicks = DefaultSampleTicks
	}
	if opts.Audio == nil {
		opts.Audio = nopAudio{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = NewRecorder(nil, opts.Clock, opts.Logger)
	}
	if opts.Context == nil {
		opts.Context = mission.NewContext()
	}
	opts.Recorder.attach(world)

	period := time.Duration(world.TPF() * float64(time.Second))
	scheduler, err := NewScheduler(period, world.Tick, opts.Logger)
	if err != nil {
		return nil, err
	}

	m := &Mission{
		world:       world,
		scheduler:   scheduler,
		projectiles: projectiles,
		player:      player,
		opts:        opts,
	}

	live, err := meter().Int64ObservableGauge(
		"sim.projectiles.live",
		metric.WithDescription("Projectiles in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating projectile gauge: %w", err)
	}
	m.gauge, err = meter().RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(live, int64(projectiles.Len()))
			return nil
		},
		live,
	)
	if err != nil {
		return nil, fmt.Errorf("registering projectile callback: %w", err)
	}

	return m, nil
}

// RegisterAircraft announces every plane to the recording.
func (m *Mission) RegisterAircraft() error {
	var errs []error
	for _, p := range m.world.Planes() {
		if err := m.opts.Recorder.Aircraft(p); err != nil {
			errs = append(errs, fmt.Errorf("registering %s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Update runs one frame. While the mission is live it keeps the scheduler
// running, publishes poses, resolves terrain and projectile collisions,
// advances projectiles and ends the mission once the player has crashed.
// While paused or ended it stops the scheduler and mutes the audio.
func (m *Mission) Update(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frames++
	m.opts.Audio.Update()
	if !m.paused.Load() && !m.ended.Load() {
		m.scheduler.Start()
		m.world.UpdatePlaneLocations(dt, m.resolve)
		m.opts.Recorder.ProjectilesRemoved(m.projectiles.Advance(dt), "")
		if m.player.Crashed() && m.ended.CompareAndSwap(false, true) {
			m.opts.Logger.Info("Player crashed, mission ended", "frame", m.world.Cycle())
		}
		if m.opts.Speedometer != nil {
			m.opts.Speedometer.SetText(m.player.SpeedKmH() + "km/h")
		}
		m.sample()
	} else {
		m.scheduler.Stop()
		m.opts.Audio.MuteAll()
	}
	m.opts.Context.SetFrame(core.Frame(m.world.Cycle()))
}

// resolve runs per plane, in parallel, under the world lock.
func (m *Mission) resolve(p *plane.Plane) {
	if !p.Crashed() && terrain.Collides(m.world.Terrain(), p.HitBox()) {
		p.SetCrashed(true)
		m.opts.Recorder.Crash(p)
		m.opts.Logger.Info("Plane crashed", "plane", p.Name())
	}
	p.UpdateSound()
	m.opts.Recorder.Hit(p, m.projectiles.CheckCollision(p))
}

// sample records every plane's state once per SampleTicks ticks.
func (m *Mission) sample() {
	cycle := m.world.Cycle()
	if m.sampled && cycle < m.lastSample+uint64(m.opts.SampleTicks) {
		return
	}
	m.sampled = true
	m.lastSample = cycle
	for _, p := range m.world.Planes() {
		m.opts.Recorder.FlightState(p)
	}
}

// Run calls Update at fps until ctx is done, the duration has passed or the
// mission has ended. A zero duration runs until cancelled or ended.
func (m *Mission) Run(ctx context.Context, fps int, duration time.Duration) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	dt := 1 / float64(fps)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var deadline <-chan time.Time
	if duration > 0 {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return nil
		case <-ticker.C:
			m.Update(dt)
			if m.Ended() {
				return nil
			}
		}
	}
}

func (m *Mission) SetPaused(paused bool) {
	m.paused.Store(paused)
}

func (m *Mission) Paused() bool {
	return m.paused.Load()
}

func (m *Mission) Ended() bool {
	return m.ended.Load()
}

// ReinitPlayer puts the player back in the air and resumes the mission.
func (m *Mission) ReinitPlayer() {
	m.world.Locked(func() {
		m.player.SetLocation(PlayerRespawn)
		m.player.SetCrashed(false)
	})
	m.ended.Store(false)
}

// Sample is the current simulation health.
func (m *Mission) Sample() core.SimPerformance {
	flying := 0
	planes := m.world.Planes()
	for _, p := range planes {
		if !p.Crashed() && !p.ShotDown() {
			flying++
		}
	}
	return core.SimPerformance{
		Time:             m.opts.Clock(),
		Frame:            core.Frame(m.world.Cycle()),
		TickRate:         int(time.Second / m.scheduler.Period()),
		Overruns:         m.scheduler.Overruns(),
		LastTickDuration: m.scheduler.LastTickDuration(),
		LiveProjectiles:  m.projectiles.Len(),
		Aircraft:         len(planes),
		AircraftFlying:   flying,
		Paused:           m.Paused(),
		Ended:            m.Ended(),
	}
}

// Close stops the tick engine, retires every projectile and silences audio.
func (m *Mission) Close() {
	m.closeOnce.Do(func() {
		m.scheduler.Stop()
		m.opts.Recorder.ProjectilesRemoved(m.projectiles.Clear(), "cleared")
		m.opts.Audio.MuteAll()
		if m.gauge != nil {
			if err := m.gauge.Unregister(); err != nil {
				m.opts.Logger.Debug("Unregistering projectile gauge", "error", err)
			}
		}
	})
}

func (m *Mission) Player() *plane.Plane          { return m.player }
func (m *Mission) World() *WorldThread           { return m.world }
func (m *Mission) Scheduler() *Scheduler         { return m.scheduler }
func (m *Mission) Projectiles() *weapons.Manager { return m.projectiles }
func (m *Mission) Recorder() *Recorder           { return m.opts.Recorder }

// Frames is the number of frame passes run.
func (m *Mission) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}
