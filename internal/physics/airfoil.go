package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Role is the functional position of an airfoil on the airframe.
type Role int

const (
	RoleLeftWing Role = iota
	RoleRightWing
	RoleHorizontalStabilizer
	RoleVerticalStabilizer
)

func (r Role) String() string {
	switch r {
	case RoleLeftWing:
		return "leftWing"
	case RoleRightWing:
		return "rightWing"
	case RoleHorizontalStabilizer:
		return "horizontalStabilizer"
	case RoleVerticalStabilizer:
		return "verticalStabilizer"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// ParseRole accepts the names produced by Role.String, case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range []Role{RoleLeftWing, RoleRightWing, RoleHorizontalStabilizer, RoleVerticalStabilizer} {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown airfoil role %q", s)
}

const (
	stallAngle      = 15 * math.Pi / 180
	postStallFactor = 0.6
	parasiticDrag   = 0.02
	oswaldFactor    = 0.8
	minAirspeedSq   = 1e-6
)

// AirfoilParams describes the airfoil geometry. Angles are in degrees.
type AirfoilParams struct {
	Name        string
	Role        Role
	Cog         mgl64.Vec3
	Area        float64
	Incidence   float64
	AspectRatio float64
	Dihedral    float64
	Damper      bool
}

// SymmetricAirfoil produces lift and drag from its angle of attack and dynamic pressure.
// The deflection is trailing-edge-up positive: it lowers the surface's angle of attack.
type SymmetricAirfoil struct {
	name        string
	role        Role
	cog         mgl64.Vec3
	area        float64
	incidence   float64
	aspectRatio float64
	damper      bool
	normal      mgl64.Vec3
	liftSlope   float64

	deflection AtomicFloat
}

func NewSymmetricAirfoil(p AirfoilParams) *SymmetricAirfoil {
	aspect := p.AspectRatio
	if aspect <= 0 {
		aspect = 1
	}
	tilt := mgl64.QuatRotate(mgl64.DegToRad(p.Dihedral), Forward)
	return &SymmetricAirfoil{
		name:        p.Name,
		role:        p.Role,
		cog:         p.Cog,
		area:        p.Area,
		incidence:   mgl64.DegToRad(p.Incidence),
		aspectRatio: aspect,
		damper:      p.Damper,
		normal:      tilt.Rotate(Up).Normalize(),
		liftSlope:   2 * math.Pi * aspect / (aspect + 2),
	}
}

func (a *SymmetricAirfoil) Name() string { return a.name }

func (a *SymmetricAirfoil) Role() Role { return a.role }

// ControlAileron sets the control surface deflection in degrees.
func (a *SymmetricAirfoil) ControlAileron(degrees float64) {
	a.deflection.Store(degrees)
}

func (a *SymmetricAirfoil) Deflection() float64 {
	return a.deflection.Load()
}

func (a *SymmetricAirfoil) liftCoefficient(aoa float64) float64 {
	abs := math.Abs(aoa)
	if abs <= stallAngle {
		return a.liftSlope * aoa
	}
	return math.Copysign(a.liftSlope*stallAngle*postStallFactor, aoa)
}

// Contribution computes lift and drag in the body frame. velocity is the
// aircraft velocity expressed in the body frame.
func (a *SymmetricAirfoil) Contribution(velocity, angularVelocity mgl64.Vec3, altitude float64, env Environment) (mgl64.Vec3, mgl64.Vec3) {
	motion := velocity
	if a.damper {
		motion = motion.Add(angularVelocity.Cross(a.cog))
	}
	span := a.normal.Cross(Forward)
	if span.LenSqr() > 0 {
		span = span.Normalize()
		motion = motion.Sub(span.Mul(motion.Dot(span)))
	}
	speedSq := motion.LenSqr()
	if speedSq < minAirspeedSq {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	dir := motion.Mul(1 / math.Sqrt(speedSq))

	aoa := math.Atan2(-dir.Dot(a.normal), dir.Dot(Forward)) + a.incidence - mgl64.DegToRad(a.deflection.Load())
	cl := a.liftCoefficient(aoa)
	cd := parasiticDrag + cl*cl/(math.Pi*oswaldFactor*a.aspectRatio)

	q := 0.5 * env.AirDensity(altitude) * speedSq * a.area

	liftDir := a.normal.Sub(dir.Mul(a.normal.Dot(dir)))
	var lift mgl64.Vec3
	if liftDir.LenSqr() > 0 {
		lift = liftDir.Normalize().Mul(q * cl)
	}
	drag := dir.Mul(-q * cd)

	force := lift.Add(drag)
	return force, a.cog.Cross(force)
}
