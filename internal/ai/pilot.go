package ai

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyhussars/engine/internal/plane"
	"github.com/skyhussars/engine/internal/terrain"
)

// World is the read-only view a pilot decides from.
type World struct {
	Planes  []*plane.Plane
	Terrain terrain.Surface
}

// Config tunes pilot behaviour. Distances in metres, angles in degrees.
type Config struct {
	MinClearance float64
	// LookAhead is how far ahead, in seconds, descent is projected for terrain avoidance.
	LookAhead      float64
	FiringRange    float64
	FiringCone     float64
	CruiseThrottle float64
}

// DefaultConfig returns the standard pilot tuning.
func DefaultConfig() Config {
	return Config{
		MinClearance:   300,
		LookAhead:      5,
		FiringRange:    800,
		FiringCone:     3,
		CruiseThrottle: 0.7,
	}
}

// Pilot flies one non-player plane. Update writes only that plane's controls.
type Pilot struct {
	plane *plane.Plane
	cfg   Config
}

func NewPilot(p *plane.Plane, cfg Config) *Pilot {
	return &Pilot{plane: p, cfg: cfg}
}

func (p *Pilot) Plane() *plane.Plane {
	return p.plane
}

// Update decides the controls for this tick.
func (p *Pilot) Update(world World) {
	own := p.plane
	if own.Crashed() || own.ShotDown() {
		own.SetFiring(false)
		return
	}

	ground := world.Terrain
	if ground == nil {
		ground = terrain.Flat(0)
	}
	pos := own.Position()
	projected := terrain.Clearance(ground, pos) + own.Velocity().Y()*p.cfg.LookAhead
	if projected < p.cfg.MinClearance {
		p.pullUp()
		return
	}

	target := p.nearestOpponent(world.Planes)
	if target == nil {
		p.cruise()
		return
	}
	p.pursue(target)
}

// pullUp levels the wings and climbs at full power.
func (p *Pilot) pullUp() {
	own := p.plane
	own.SetFiring(false)
	own.SetAileron(own.Roll() / 30)
	own.SetElevator(1)
	_ = own.SetThrottle(1)
	own.SetRudder(0)
}

// cruise holds level flight.
func (p *Pilot) cruise() {
	own := p.plane
	own.SetFiring(false)
	own.SetAileron(own.Roll() / 30)
	own.SetElevator(-own.Velocity().Y() / 50)
	_ = own.SetThrottle(p.cfg.CruiseThrottle)
	own.SetRudder(0)
}

func (p *Pilot) pursue(target *plane.Plane) {
	own := p.plane
	pose := own.Pose()
	rotation := pose.Rotation
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}

	offset := target.Position().Sub(pose.Position)
	distance := offset.Len()
	if distance == 0 {
		return
	}
	local := rotation.Inverse().Rotate(offset)

	// bank so the target sits above the canopy, then pull towards it
	bank := math.Atan2(local.X(), local.Y())
	own.SetAileron(bank / (math.Pi / 4))
	own.SetElevator(4 * local.Y() / distance)
	own.SetRudder(-local.X() / distance)

	if distance > p.cfg.FiringRange {
		_ = own.SetThrottle(1)
	} else {
		_ = own.SetThrottle(p.cfg.CruiseThrottle)
	}

	off := mgl64.RadToDeg(math.Acos(mgl64.Clamp(local.Z()/distance, -1, 1)))
	own.SetFiring(distance <= p.cfg.FiringRange && off <= p.cfg.FiringCone)
}

// nearestOpponent picks the closest flying plane of another faction.
func (p *Pilot) nearestOpponent(planes []*plane.Plane) *plane.Plane {
	own := p.plane
	pos := own.Position()
	var best *plane.Plane
	bestDist := math.Inf(1)
	for _, other := range planes {
		if other == own || other.Faction() == own.Faction() || other.Crashed() || other.ShotDown() {
			continue
		}
		d := other.Position().Sub(pos).LenSqr()
		if d < bestDist {
			best, bestDist = other, d
		}
	}
	return best
}
