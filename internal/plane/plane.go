package plane

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/skyhussars/engine/internal/physics"
	"github.com/skyhussars/engine/internal/worker"
)

// Control surface travel in degrees at full stick.
const (
	MaxAileron  = 2.0
	MaxElevator = 10.0
	MaxRudder   = 1.0
)

// ErrInvalidArgument is returned for out-of-range control input.
var ErrInvalidArgument = errors.New("invalid argument")

// Plane is one aircraft: its physics, control surfaces, guns and combat state.
//
// Controls and flags are atomics because pilots write them during the tick
// while the frame pass reads them. The published pose is what the rest of the
// world sees; it is refreshed by Update, not by integration.
type Plane struct {
	id         uuid.UUID
	name       string
	descriptor string
	player     bool
	faction    string

	flight  *physics.PlanePhysics
	engines []*physics.Engine

	leftWings             []*physics.SymmetricAirfoil
	rightWings            []*physics.SymmetricAirfoil
	horizontalStabilizers []*physics.SymmetricAirfoil
	verticalStabilizers   []*physics.SymmetricAirfoil

	gunGroups []*GunGroup
	hitBox    mgl64.Vec3

	throttle physics.AtomicFloat
	aileron  physics.AtomicFloat
	elevator physics.AtomicFloat
	rudder   physics.AtomicFloat

	firing   atomic.Bool
	crashed  atomic.Bool
	shotDown atomic.Bool

	poseMu sync.RWMutex
	pose   physics.Pose

	sounds  Sounds
	effects Effects
	pool    *worker.Pool
	logger  *slog.Logger
}

func (p *Plane) ID() uuid.UUID      { return p.id }
func (p *Plane) Name() string       { return p.name }
func (p *Plane) Descriptor() string { return p.descriptor }
func (p *Plane) IsPlayer() bool     { return p.player }
func (p *Plane) Faction() string    { return p.faction }

// SetThrottle sets every engine's throttle. Values outside [0,1] are rejected
// without changing anything.
func (p *Plane) SetThrottle(throttle float64) error {
	if math.IsNaN(throttle) || throttle < 0 || throttle > 1 {
		return fmt.Errorf("%w: throttle %v outside [0,1]", ErrInvalidArgument, throttle)
	}
	p.throttle.Store(throttle)
	for _, e := range p.engines {
		e.SetThrottle(throttle)
	}
	p.sounds.SetEnginePitch(0.5 + throttle)
	return nil
}

func (p *Plane) Throttle() float64 {
	return p.throttle.Load()
}

// SetAileron rolls the plane; positive drops the left wing.
func (p *Plane) SetAileron(aileron float64) {
	aileron = normalizeControl(aileron)
	p.aileron.Store(aileron)
	for _, w := range p.leftWings {
		w.ControlAileron(MaxAileron * aileron)
	}
	for _, w := range p.rightWings {
		w.ControlAileron(-MaxAileron * aileron)
	}
}

// SetElevator pitches the plane; positive raises the nose.
func (p *Plane) SetElevator(elevator float64) {
	elevator = normalizeControl(elevator)
	p.elevator.Store(elevator)
	for _, s := range p.horizontalStabilizers {
		s.ControlAileron(MaxElevator * elevator)
	}
}

func (p *Plane) SetRudder(rudder float64) {
	rudder = normalizeControl(rudder)
	p.rudder.Store(rudder)
	for _, s := range p.verticalStabilizers {
		s.ControlAileron(MaxRudder * rudder)
	}
}

func (p *Plane) Aileron() float64  { return p.aileron.Load() }
func (p *Plane) Elevator() float64 { return p.elevator.Load() }
func (p *Plane) Rudder() float64   { return p.rudder.Load() }

// normalizeControl maps NaN to neutral and clamps to [-1,1].
func normalizeControl(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return mgl64.Clamp(v, -1, 1)
}

func (p *Plane) SetFiring(firing bool) {
	p.firing.Store(firing)
}

func (p *Plane) Firing() bool {
	return p.firing.Load()
}

// Hit registers a confirmed hit. The first hit shoots the plane down: every
// engine is wrecked and the effect fires. Later hits change nothing.
// It reports whether this call caused the transition.
func (p *Plane) Hit() bool {
	if !p.shotDown.CompareAndSwap(false, true) {
		return false
	}
	for _, e := range p.engines {
		e.Damage(1.0)
	}
	p.effects.ShotDown(p)
	p.logger.Info("Plane shot down", "id", p.id)
	return true
}

func (p *Plane) ShotDown() bool {
	return p.shotDown.Load()
}

func (p *Plane) SetCrashed(crashed bool) {
	p.crashed.Store(crashed)
}

func (p *Plane) Crashed() bool {
	return p.crashed.Load()
}

// UpdatePhysics integrates one tick.
func (p *Plane) UpdatePhysics(dt float64, env physics.Environment) {
	p.flight.Integrate(dt, env)
	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logger.Debug(p.flight.Info())
	}
}

// Update publishes the integrated pose and, unless crashed, runs the guns
// from the freshly published pose.
func (p *Plane) Update(dt float64) {
	p.flight.PublishPose(p)
	if p.Crashed() {
		return
	}
	firing := p.Firing()
	pose := p.Pose()
	velocity := p.flight.Velocity()
	worker.ForEach(p.pool, p.gunGroups, func(g *GunGroup) {
		g.Fire(firing, dt, pose, velocity)
	})
}

// UpdateSound drives the engine and gun audio.
func (p *Plane) UpdateSound() {
	if p.Crashed() {
		p.sounds.PauseEngine()
		p.sounds.StopGuns()
		return
	}
	p.sounds.PlayEngine()
	if p.Firing() {
		p.sounds.PlayGuns()
	} else {
		p.sounds.StopGuns()
	}
}

// SetPose stores the published pose.
func (p *Plane) SetPose(pose physics.Pose) {
	p.poseMu.Lock()
	defer p.poseMu.Unlock()
	p.pose = pose
}

// Pose is the last published pose.
func (p *Plane) Pose() physics.Pose {
	p.poseMu.RLock()
	defer p.poseMu.RUnlock()
	return p.pose
}

// SetLocation moves the plane in both the physics state and the published pose.
func (p *Plane) SetLocation(location mgl64.Vec3) {
	p.flight.SetPosition(location)
	p.flight.PublishPose(p)
}

// SetHeight keeps the horizontal position and changes the altitude.
func (p *Plane) SetHeight(height float64) {
	pos := p.Position()
	p.SetLocation(mgl64.Vec3{pos.X(), height, pos.Z()})
}

// SetForwardSpeed resets the velocity along the current heading.
func (p *Plane) SetForwardSpeed(speed float64) {
	p.flight.SetForwardSpeed(speed)
}

func (p *Plane) Position() mgl64.Vec3 {
	return p.Pose().Position
}

func (p *Plane) Height() float64 {
	return p.Position().Y()
}

func (p *Plane) Direction() mgl64.Vec3 {
	return p.Pose().Direction()
}

func (p *Plane) Up() mgl64.Vec3 {
	return p.Pose().Rotation.Rotate(physics.Up).Normalize()
}

// Roll is the bank angle in degrees; positive when the right wing is low.
func (p *Plane) Roll() float64 {
	forward := p.Direction()
	up := p.Up()
	sign := -1.0
	if forward.Cross(physics.Up).Dot(up) > 0 {
		sign = 1
	}
	cos := mgl64.Clamp(up.Dot(physics.Up), -1, 1)
	return sign * mgl64.RadToDeg(math.Acos(cos))
}

func (p *Plane) Velocity() mgl64.Vec3 {
	return p.flight.Velocity()
}

func (p *Plane) Speed() float64 {
	return p.flight.Speed()
}

func (p *Plane) SpeedKmH() string {
	return p.flight.SpeedKmH()
}

// State is a consistent copy of the physics state.
func (p *Plane) State() physics.State {
	return p.flight.State()
}

// HitBox is the oriented bounding box at the published pose.
func (p *Plane) HitBox() physics.OrientedBox {
	pose := p.Pose()
	return physics.OrientedBox{
		Center:      pose.Position,
		HalfExtents: p.hitBox,
		Rotation:    pose.Rotation,
	}
}

func (p *Plane) Engines() []*physics.Engine {
	return p.engines
}

func (p *Plane) GunGroups() []*GunGroup {
	return p.gunGroups
}

func (p *Plane) Info() string {
	return p.flight.Info()
}
