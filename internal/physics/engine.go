package physics

import "github.com/go-gl/mathgl/mgl64"

// Forward is the body-frame nose direction.
var Forward = mgl64.Vec3{0, 0, 1}

// Up is the body-frame canopy direction.
var Up = mgl64.Vec3{0, 1, 0}

// ForceProducer contributes force and torque in the body frame.
type ForceProducer interface {
	Contribution(velocity, angularVelocity mgl64.Vec3, altitude float64, env Environment) (force, torque mgl64.Vec3)
}

// Engine produces thrust along the body forward axis.
// Throttle is expected in [0,1]; range checks happen in the plane.
type Engine struct {
	location  mgl64.Vec3
	maxThrust float64
	throttle  AtomicFloat
	damage    AtomicFloat
}

// NewEngine creates an engine at a body-frame location with its full-throttle thrust in newtons.
func NewEngine(location mgl64.Vec3, maxThrust float64) *Engine {
	return &Engine{
		location:  location,
		maxThrust: maxThrust,
	}
}

func (e *Engine) SetThrottle(throttle float64) {
	e.throttle.Store(throttle)
}

func (e *Engine) Throttle() float64 {
	return e.throttle.Load()
}

// Damage raises the damage level. Damage never decreases and saturates at 1.
func (e *Engine) Damage(damage float64) {
	if damage > 1 {
		damage = 1
	}
	e.damage.StoreMax(damage)
}

func (e *Engine) Damaged() float64 {
	return e.damage.Load()
}

// Thrust is the current thrust magnitude in newtons.
func (e *Engine) Thrust() float64 {
	return e.maxThrust * e.throttle.Load() * (1 - e.damage.Load())
}

func (e *Engine) Contribution(_, _ mgl64.Vec3, _ float64, _ Environment) (mgl64.Vec3, mgl64.Vec3) {
	force := Forward.Mul(e.Thrust())
	return force, e.location.Cross(force)
}
