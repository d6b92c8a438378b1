package plane

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/skyhussars/engine/internal/physics"
)

func TestGunGroup_Cooldown(t *testing.T) {
	spawner := &recordingSpawner{}
	// 600 rounds per minute: one burst every 0.1s
	g := NewGunGroup(GunGroupDescriptor{Guns: 1, RateOfFire: 600, MuzzleVelocity: 100}, uuid.New(), spawner)
	pose := physics.Pose{Rotation: mgl64.QuatIdent()}

	assert.Equal(t, 1, g.Fire(true, 0.04, pose, mgl64.Vec3{}))
	assert.Equal(t, 0, g.Fire(true, 0.04, pose, mgl64.Vec3{}))
	assert.Equal(t, 0, g.Fire(true, 0.04, pose, mgl64.Vec3{}))
	assert.Equal(t, 1, g.Fire(true, 0.04, pose, mgl64.Vec3{}))

	assert.Equal(t, 2, spawner.count())
	assert.Equal(t, 2, g.Fired())
	assert.Equal(t, -1, g.Ammo())
}

func TestGunGroup_TriggerReleased(t *testing.T) {
	spawner := &recordingSpawner{}
	g := NewGunGroup(GunGroupDescriptor{Guns: 4, RateOfFire: 1200}, uuid.New(), spawner)

	assert.Zero(t, g.Fire(false, tpf, physics.Pose{}, mgl64.Vec3{}))
	assert.Zero(t, spawner.count())
}

func TestGunGroup_RunsOutOfAmmo(t *testing.T) {
	spawner := &recordingSpawner{}
	g := NewGunGroup(GunGroupDescriptor{Guns: 2, RateOfFire: 6000, Ammo: 2}, uuid.New(), spawner)

	for range 10 {
		g.Fire(true, 1, physics.Pose{}, mgl64.Vec3{})
	}

	assert.Equal(t, 4, spawner.count())
	assert.Equal(t, 0, g.Ammo())
}

func TestGunGroup_MuzzleOffsetAndInheritedVelocity(t *testing.T) {
	spawner := &recordingSpawner{}
	g := NewGunGroup(GunGroupDescriptor{Offset: mgl64.Vec3{1, 0, 2}, Guns: 1, RateOfFire: 60, MuzzleVelocity: 800, InheritVelocity: true}, uuid.New(), spawner)
	// facing +X
	pose := physics.Pose{Position: mgl64.Vec3{0, 100, 0}, Rotation: mgl64.QuatRotate(mgl64.DegToRad(90), physics.Up)}

	g.Fire(true, tpf, pose, mgl64.Vec3{200, 0, 0})

	shot := spawner.spawn[0]
	assert.InDelta(t, 2.0, shot.position.X(), 1e-9)
	assert.InDelta(t, 100.0, shot.position.Y(), 1e-9)
	assert.InDelta(t, -1.0, shot.position.Z(), 1e-9)
	assert.InDelta(t, 1000.0, shot.velocity.X(), 1e-9)
}
