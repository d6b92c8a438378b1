package physics

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a position and an orientation.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Direction is the world-space forward vector of the pose.
func (p Pose) Direction() mgl64.Vec3 {
	return p.Rotation.Rotate(Forward).Normalize()
}

// PoseSink receives published poses. Presentation and collision
// representations implement it.
type PoseSink interface {
	SetPose(pose Pose)
}

// State is a consistent copy of the integrator state.
type State struct {
	Pose
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// PlanePhysics owns the authoritative pose and velocity of one aircraft.
// Integrate and PublishPose serialise on the same lock.
type PlanePhysics struct {
	mu              sync.RWMutex
	position        mgl64.Vec3
	rotation        mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3

	mass      float64
	inertia   mgl64.Vec3
	producers []ForceProducer
}

// NewPlanePhysics creates an integrator. Zero inertia components are derived from the mass.
func NewPlanePhysics(rotation mgl64.Quat, position mgl64.Vec3, mass float64, inertia mgl64.Vec3, producers []ForceProducer) *PlanePhysics {
	if mass <= 0 {
		mass = 1
	}
	for i := range 3 {
		if inertia[i] <= 0 {
			inertia[i] = mass * 4
		}
	}
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}
	return &PlanePhysics{
		position:  position,
		rotation:  rotation.Normalize(),
		mass:      mass,
		inertia:   inertia,
		producers: producers,
	}
}

// Integrate advances the state by dt seconds. It never fails.
func (p *PlanePhysics) Integrate(dt float64, env Environment) {
	if dt <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	localVelocity := p.rotation.Inverse().Rotate(p.velocity)
	altitude := p.position.Y()

	var force, torque mgl64.Vec3
	for _, producer := range p.producers {
		f, t := producer.Contribution(localVelocity, p.angularVelocity, altitude, env)
		force = force.Add(f)
		torque = torque.Add(t)
	}

	worldForce := p.rotation.Rotate(force).Add(mgl64.Vec3{0, -env.Gravity * p.mass, 0})
	acceleration := worldForce.Mul(1 / p.mass)
	p.velocity = sanitize(p.velocity.Add(acceleration.Mul(dt)))
	p.position = sanitize(p.position.Add(p.velocity.Mul(dt)))

	angularAcceleration := mgl64.Vec3{
		torque.X() / p.inertia.X(),
		torque.Y() / p.inertia.Y(),
		torque.Z() / p.inertia.Z(),
	}
	p.angularVelocity = sanitize(p.angularVelocity.Add(angularAcceleration.Mul(dt)))
	p.rotation = integrateRotation(p.rotation, p.angularVelocity, dt)
}

// integrateRotation applies a body-frame angular velocity to q.
func integrateRotation(q mgl64.Quat, omega mgl64.Vec3, dt float64) mgl64.Quat {
	if omega.LenSqr() == 0 {
		return q
	}
	spin := q.Mul(mgl64.Quat{W: 0, V: omega}).Scale(0.5 * dt)
	next := q.Add(spin)
	if next.Len() == 0 || math.IsNaN(next.W) {
		return q
	}
	return next.Normalize()
}

func sanitize(v mgl64.Vec3) mgl64.Vec3 {
	for i := range 3 {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			v[i] = 0
		}
	}
	return v
}

// PublishPose pushes the integrated pose into an external representation.
func (p *PlanePhysics) PublishPose(sink PoseSink) {
	sink.SetPose(p.Pose())
}

func (p *PlanePhysics) Pose() Pose {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Pose{Position: p.position, Rotation: p.rotation}
}

func (p *PlanePhysics) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return State{
		Pose:            Pose{Position: p.position, Rotation: p.rotation},
		Velocity:        p.velocity,
		AngularVelocity: p.angularVelocity,
	}
}

func (p *PlanePhysics) Velocity() mgl64.Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.velocity
}

// Speed is the velocity magnitude in m/s.
func (p *PlanePhysics) Speed() float64 {
	return p.Velocity().Len()
}

// SpeedKmH formats the speed for the speedometer.
func (p *PlanePhysics) SpeedKmH() string {
	return fmt.Sprintf("%d", int(math.Round(p.Speed()*3.6)))
}

func (p *PlanePhysics) SetPosition(position mgl64.Vec3) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = position
}

func (p *PlanePhysics) SetRotation(rotation mgl64.Quat) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rotation.Len() == 0 {
		return
	}
	p.rotation = rotation.Normalize()
}

// SetForwardSpeed seeds the velocity along the current heading so lift
// is nonzero from the first tick.
func (p *PlanePhysics) SetForwardSpeed(speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.velocity = p.rotation.Rotate(Forward).Mul(speed)
	p.angularVelocity = mgl64.Vec3{}
}

func (p *PlanePhysics) Mass() float64 {
	return p.mass
}

// Info is a one-line debug summary.
func (p *PlanePhysics) Info() string {
	s := p.State()
	return fmt.Sprintf("pos=(%.1f, %.1f, %.1f) vel=(%.1f, %.1f, %.1f) speed=%.1f m/s",
		s.Position.X(), s.Position.Y(), s.Position.Z(),
		s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
		s.Velocity.Len())
}
