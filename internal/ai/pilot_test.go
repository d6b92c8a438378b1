package ai

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/internal/physics"
	"github.com/skyhussars/engine/internal/plane"
	"github.com/skyhussars/engine/internal/terrain"
)

func testDescriptor() plane.Descriptor {
	return plane.Descriptor{
		Name:      "trainer",
		MassGross: 5000,
		HitBox:    mgl64.Vec3{6, 1.5, 5},
		Engines:   []plane.EngineDescriptor{{MaxThrust: 15000}},
		Airfoils: []plane.AirfoilDescriptor{
			{Name: "WingLeft", Role: physics.RoleLeftWing, Cog: mgl64.Vec3{2, 0, 0}, Area: 10, AspectRatio: 6},
			{Name: "WingRight", Role: physics.RoleRightWing, Cog: mgl64.Vec3{-2, 0, 0}, Area: 10, AspectRatio: 6},
			{Name: "Horizontal", Role: physics.RoleHorizontalStabilizer, Cog: mgl64.Vec3{0, 0, -6}, Area: 3, AspectRatio: 4},
			{Name: "Vertical", Role: physics.RoleVerticalStabilizer, Cog: mgl64.Vec3{0, 1, -6}, Area: 1.5, AspectRatio: 2, Dihedral: 90},
		},
	}
}

func newPlane(t *testing.T, faction string, position mgl64.Vec3) *plane.Plane {
	t.Helper()
	p, err := plane.NewFactory(plane.Dependencies{}).Create(testDescriptor(), plane.Options{Faction: faction, Position: position})
	require.NoError(t, err)
	return p
}

func TestPilot_PullsUpNearTerrain(t *testing.T) {
	own := newPlane(t, "red", mgl64.Vec3{0, 150, 0})
	own.SetFiring(true)
	pilot := NewPilot(own, DefaultConfig())

	pilot.Update(World{Planes: []*plane.Plane{own}, Terrain: terrain.Flat(0)})

	assert.Equal(t, 1.0, own.Elevator())
	assert.Equal(t, 1.0, own.Throttle())
	assert.False(t, own.Firing())
}

func TestPilot_CruisesWithoutOpponents(t *testing.T) {
	own := newPlane(t, "red", mgl64.Vec3{0, 3000, 0})
	friend := newPlane(t, "red", mgl64.Vec3{0, 3000, 500})
	pilot := NewPilot(own, DefaultConfig())

	pilot.Update(World{Planes: []*plane.Plane{own, friend}})

	assert.Equal(t, DefaultConfig().CruiseThrottle, own.Throttle())
	assert.False(t, own.Firing())
}

func TestPilot_FiresAtTargetAhead(t *testing.T) {
	own := newPlane(t, "red", mgl64.Vec3{0, 3000, 0})
	enemy := newPlane(t, "blue", mgl64.Vec3{0, 3000, 400})
	pilot := NewPilot(own, DefaultConfig())

	pilot.Update(World{Planes: []*plane.Plane{own, enemy}})

	assert.True(t, own.Firing())
	assert.InDelta(t, 0.0, own.Aileron(), 1e-9)
}

func TestPilot_HoldsFireOutOfRange(t *testing.T) {
	own := newPlane(t, "red", mgl64.Vec3{0, 3000, 0})
	enemy := newPlane(t, "blue", mgl64.Vec3{0, 3000, 5000})
	pilot := NewPilot(own, DefaultConfig())

	pilot.Update(World{Planes: []*plane.Plane{own, enemy}})

	assert.False(t, own.Firing())
	assert.Equal(t, 1.0, own.Throttle())
}

func TestPilot_TurnsTowardsTarget(t *testing.T) {
	own := newPlane(t, "red", mgl64.Vec3{0, 3000, 0})
	// +X is the left wing side
	left := newPlane(t, "blue", mgl64.Vec3{500, 3000, 500})
	pilot := NewPilot(own, DefaultConfig())

	pilot.Update(World{Planes: []*plane.Plane{own, left}})

	assert.Greater(t, own.Aileron(), 0.0)
	assert.Less(t, own.Rudder(), 0.0)
	assert.False(t, own.Firing())
}

func TestPilot_IgnoresDownedPlanes(t *testing.T) {
	own := newPlane(t, "red", mgl64.Vec3{0, 3000, 0})
	enemy := newPlane(t, "blue", mgl64.Vec3{0, 3000, 400})
	enemy.Hit()
	pilot := NewPilot(own, DefaultConfig())

	pilot.Update(World{Planes: []*plane.Plane{own, enemy}})

	assert.False(t, own.Firing())
}

func TestPilot_DownedPlaneStopsFiring(t *testing.T) {
	own := newPlane(t, "red", mgl64.Vec3{0, 3000, 0})
	own.SetFiring(true)
	own.Hit()

	NewPilot(own, DefaultConfig()).Update(World{})

	assert.False(t, own.Firing())
}
