package sim

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/skyhussars/engine/internal/dispatcher"
	"github.com/skyhussars/engine/internal/plane"
	"github.com/skyhussars/engine/internal/weapons"
	"github.com/skyhussars/engine/internal/worker"
	"github.com/skyhussars/engine/pkg/core"
)

// EventSink receives simulation events. *dispatcher.Dispatcher implements it.
type EventSink interface {
	Dispatch(e dispatcher.Event) (any, error)
}

type projectileTrack struct {
	spawnFrame core.Frame
	hits       int
}

// Recorder turns simulation happenings into dispatcher events. It never
// blocks the simulation on storage: handlers behind the sink are buffered and
// failed dispatches are only counted.
type Recorder struct {
	sink   EventSink
	now    func() time.Time
	logger *slog.Logger
	cycle  atomic.Pointer[func() uint64]

	mu     sync.Mutex
	tracks map[uuid.UUID]*projectileTrack

	failed atomic.Uint64
}

// NewRecorder creates a recorder. A nil sink records nothing.
func NewRecorder(sink EventSink, now func() time.Time, logger *slog.Logger) *Recorder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		sink:   sink,
		now:    now,
		logger: logger,
		tracks: make(map[uuid.UUID]*projectileTrack),
	}
}

// attach makes event frames follow the world's tick counter.
func (r *Recorder) attach(w *WorldThread) {
	cycle := w.Cycle
	r.cycle.Store(&cycle)
}

func (r *Recorder) frame() core.Frame {
	if c := r.cycle.Load(); c != nil {
		return core.Frame((*c)())
	}
	return 0
}

// Failed is the number of events the sink refused.
func (r *Recorder) Failed() uint64 {
	return r.failed.Load()
}

func (r *Recorder) emit(command string, payload any) error {
	if r.sink == nil {
		return nil
	}
	_, err := r.sink.Dispatch(dispatcher.Event{
		Command:   command,
		Payload:   payload,
		Timestamp: r.now(),
	})
	if err != nil {
		if r.failed.Add(1)%1000 == 1 {
			r.logger.Warn("Dropping simulation events", "command", command, "error", err, "failed", r.failed.Load())
		}
	}
	return err
}

// Aircraft registers a plane with the recording.
func (r *Recorder) Aircraft(p *plane.Plane) error {
	return r.emit(worker.CmdAircraft, &core.Aircraft{
		ID:        p.ID(),
		Name:      p.Name(),
		Type:      p.Descriptor(),
		Faction:   p.Faction(),
		Player:    p.IsPlayer(),
		JoinTime:  r.now(),
		JoinFrame: r.frame(),
	})
}

// FlightState samples one plane.
func (r *Recorder) FlightState(p *plane.Plane) {
	r.emit(worker.CmdFlightState, FlightStateOf(p, r.frame(), r.now()))
}

// ProjectileSpawned records a round leaving a gun.
func (r *Recorder) ProjectileSpawned(p weapons.Projectile) {
	frame := r.frame()
	r.mu.Lock()
	r.tracks[p.ID] = &projectileTrack{spawnFrame: frame}
	r.mu.Unlock()

	r.emit(worker.CmdFired, &core.FiredEvent{
		AircraftID:   p.Owner,
		ProjectileID: p.ID,
		Time:         r.now(),
		Frame:        frame,
		Position:     core.PositionFromVec(p.Position),
		Velocity:     core.PositionFromVec(p.Velocity),
	})
}

// ProjectilesRemoved records the end of each round's flight.
func (r *Recorder) ProjectilesRemoved(removed []weapons.Projectile, reason string) {
	if len(removed) == 0 {
		return
	}
	frame := r.frame()
	now := r.now()
	for _, p := range removed {
		r.mu.Lock()
		track, ok := r.tracks[p.ID]
		delete(r.tracks, p.ID)
		r.mu.Unlock()
		if !ok {
			track = &projectileTrack{spawnFrame: frame}
		}

		end := reason
		if end == "" {
			end = projectileReason(p.State)
		}
		r.emit(worker.CmdProjectile, &core.ProjectileEvent{
			ProjectileID: p.ID,
			AircraftID:   p.Owner,
			Time:         now,
			SpawnFrame:   track.spawnFrame,
			EndFrame:     frame,
			Start:        core.PositionFromVec(p.Origin),
			End:          core.PositionFromVec(p.Position),
			Velocity:     core.PositionFromVec(p.Velocity),
			Reason:       end,
			Hits:         max(track.hits, p.Hits),
			FlightTime:   float32(p.Age.Seconds()),
		})
	}
}

func projectileReason(s weapons.State) string {
	switch s {
	case weapons.StateHit:
		return core.ProjectileHit
	case weapons.StateExpired:
		return core.ProjectileExpired
	default:
		return core.ProjectileCleared
	}
}

// Hit records a collision check that found rounds inside victim.
func (r *Recorder) Hit(victim *plane.Plane, result weapons.CollisionResult) {
	if result.Hits == 0 {
		return
	}
	r.mu.Lock()
	for _, p := range result.Projectiles {
		if t, ok := r.tracks[p.ID]; ok {
			t.hits++
		}
	}
	r.mu.Unlock()

	frame := r.frame()
	now := r.now()
	position := victim.Position()
	var shooter uuid.UUID
	var distance float64
	if len(result.Projectiles) > 0 {
		first := result.Projectiles[0]
		shooter = first.Owner
		distance = position.Sub(first.Origin).Len()
	}

	r.emit(worker.CmdHit, &core.HitEvent{
		Time:      now,
		Frame:     frame,
		VictimID:  victim.ID(),
		ShooterID: shooter,
		Rounds:    result.Hits,
		Position:  core.PositionFromVec(position),
		Distance:  float32(distance),
	})
	if result.ShotDown {
		r.emit(worker.CmdShotDown, &core.ShotDownEvent{
			Time:     now,
			Frame:    frame,
			VictimID: victim.ID(),
			KillerID: shooter,
			Position: core.PositionFromVec(position),
		})
	}
}

// Crash records a plane touching the ground.
func (r *Recorder) Crash(p *plane.Plane) {
	r.emit(worker.CmdCrash, &core.CrashEvent{
		Time:       r.now(),
		Frame:      r.frame(),
		AircraftID: p.ID(),
		Position:   core.PositionFromVec(p.Position()),
		SpeedKmH:   float32(p.Speed() * 3.6),
	})
}

// Performance forwards a health sample.
func (r *Recorder) Performance(perf *core.SimPerformance) error {
	return r.emit(worker.CmdPerf, perf)
}

// FlightStateOf snapshots a plane.
func FlightStateOf(p *plane.Plane, frame core.Frame, now time.Time) *core.FlightState {
	dir := p.Direction()
	heading := math.Mod(360+180*math.Atan2(dir.X(), dir.Z())/math.Pi, 360)
	if math.IsNaN(heading) {
		heading = 0
	}
	return &core.FlightState{
		AircraftID: p.ID(),
		Time:       now,
		Frame:      frame,
		Position:   core.PositionFromVec(p.Position()),
		Velocity:   core.PositionFromVec(p.Velocity()),
		Heading:    float32(heading),
		Roll:       float32(p.Roll()),
		SpeedKmH:   float32(p.Speed() * 3.6),
		Throttle:   float32(p.Throttle()),
		Aileron:    float32(p.Aileron()),
		Elevator:   float32(p.Elevator()),
		Rudder:     float32(p.Rudder()),
		Firing:     p.Firing(),
		Crashed:    p.Crashed(),
		ShotDown:   p.ShotDown(),
	}
}
