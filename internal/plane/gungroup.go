package plane

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/skyhussars/engine/internal/physics"
)

// ProjectileSpawner accepts new projectiles. The weapons manager implements it.
type ProjectileSpawner interface {
	Spawn(owner uuid.UUID, position, velocity mgl64.Vec3)
}

// GunGroup is a set of guns sharing one trigger and one cooldown.
type GunGroup struct {
	mu       sync.Mutex
	desc     GunGroupDescriptor
	owner    uuid.UUID
	spawner  ProjectileSpawner
	interval float64
	cooldown float64
	ammo     int
	fired    int
}

func NewGunGroup(desc GunGroupDescriptor, owner uuid.UUID, spawner ProjectileSpawner) *GunGroup {
	interval := 0.0
	if desc.RateOfFire > 0 {
		interval = 60 / desc.RateOfFire
	}
	return &GunGroup{
		desc:     desc,
		owner:    owner,
		spawner:  spawner,
		interval: interval,
		ammo:     desc.Ammo,
	}
}

func (g *GunGroup) Name() string {
	return g.desc.Name
}

// Fire advances the cooldown by dt and, when the trigger is held and the guns
// are ready, spawns one round per gun. It returns the number of rounds spawned.
// Rounds leave from the muzzle offset along the nose; the plane's velocity is
// added only when the group inherits it.
func (g *GunGroup) Fire(firing bool, dt float64, pose physics.Pose, velocity mgl64.Vec3) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cooldown > 0 {
		g.cooldown -= dt
	}
	if !firing || g.cooldown > 0 || g.spawner == nil {
		return 0
	}
	if g.desc.Ammo > 0 && g.ammo <= 0 {
		return 0
	}

	rotation := pose.Rotation
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}
	position := pose.Position.Add(rotation.Rotate(g.desc.Offset))
	muzzle := rotation.Rotate(physics.Forward).Normalize().Mul(g.desc.MuzzleVelocity)
	if g.desc.InheritVelocity {
		muzzle = muzzle.Add(velocity)
	}

	for range g.desc.Guns {
		g.spawner.Spawn(g.owner, position, muzzle)
	}
	g.fired += g.desc.Guns
	if g.desc.Ammo > 0 {
		g.ammo--
	}
	g.cooldown += g.interval
	if g.cooldown < 0 {
		g.cooldown = 0
	}
	return g.desc.Guns
}

// Ammo returns the rounds left per gun, or -1 when unlimited.
func (g *GunGroup) Ammo() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.desc.Ammo == 0 {
		return -1
	}
	return g.ammo
}

// Fired is the total number of rounds spawned.
func (g *GunGroup) Fired() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fired
}
