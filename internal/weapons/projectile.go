package weapons

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/skyhussars/engine/internal/physics"
)

// State is the lifecycle stage of a projectile.
type State int

const (
	StateLive State = iota
	StateExpired
	StateHit
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateExpired:
		return "expired"
	case StateHit:
		return "hit"
	default:
		return "unknown"
	}
}

// DefaultLifetime is how long a round flies before it expires.
const DefaultLifetime = 3 * time.Second

// Projectile is one round in flight.
type Projectile struct {
	ID        uuid.UUID
	Owner     uuid.UUID
	SpawnedAt time.Duration
	Origin    mgl64.Vec3
	Position  mgl64.Vec3
	Velocity  mgl64.Vec3
	Age       time.Duration
	Lifetime  time.Duration
	State     State
	Hits      int
}

// Live reports whether the projectile is still flying.
func (p *Projectile) Live() bool {
	return p.State == StateLive
}

// advance moves the round ballistically and expires it when its time is up.
func (p *Projectile) advance(dt float64) {
	if !p.Live() {
		return
	}
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	p.Age += time.Duration(dt * float64(time.Second))
	if p.Age >= p.Lifetime {
		p.State = StateExpired
	}
}

// Pose faces the velocity.
func (p *Projectile) Pose() physics.Pose {
	return physics.Pose{Position: p.Position, Rotation: lookRotation(p.Velocity)}
}

// lookRotation turns the body forward axis onto dir.
func lookRotation(dir mgl64.Vec3) mgl64.Quat {
	if dir.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(physics.Forward, dir.Normalize())
}
