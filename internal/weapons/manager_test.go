package weapons

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/internal/physics"
	"github.com/skyhussars/engine/internal/worker"
)

type testTarget struct {
	id   uuid.UUID
	box  physics.OrientedBox
	mu   sync.Mutex
	hits int
}

func newTarget(center mgl64.Vec3) *testTarget {
	return &testTarget{
		id:  uuid.New(),
		box: physics.OrientedBox{Center: center, HalfExtents: mgl64.Vec3{5, 2, 5}, Rotation: mgl64.QuatIdent()},
	}
}

func (t *testTarget) ID() uuid.UUID               { return t.id }
func (t *testTarget) HitBox() physics.OrientedBox { return t.box }
func (t *testTarget) Hit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hits++
	return t.hits == 1
}

type spawnCounter struct {
	mu    sync.Mutex
	count int
}

func (s *spawnCounter) ProjectileSpawned(Projectile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
}

func TestSpawn_KeepsHandlesAligned(t *testing.T) {
	listener := &spawnCounter{}
	m := NewManager(Config{Listener: listener})
	owner := uuid.New()

	m.Spawn(owner, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 100})
	m.Spawn(owner, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 0, 100})

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 2, m.HandleCount())
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, m.HandleAt(1).Position())
	assert.Equal(t, 2, listener.count)

	ps := m.Projectiles()
	assert.Equal(t, owner, ps[0].Owner)
	assert.Equal(t, StateLive, ps[0].State)
	assert.Equal(t, DefaultLifetime, ps[0].Lifetime)
}

func TestAdvance_Ballistic(t *testing.T) {
	m := NewManager(Config{})
	m.Spawn(uuid.New(), mgl64.Vec3{0, 100, 0}, mgl64.Vec3{30, 0, 60})

	removed := m.Advance(0.5)

	assert.Empty(t, removed)
	p := m.Projectiles()[0]
	assert.Equal(t, mgl64.Vec3{15, 100, 30}, p.Position)
	assert.Equal(t, p.Position, m.HandleAt(0).Position())

	pose := m.HandleAt(0).(*PointHandle).Pose()
	assert.InDelta(t, 1.0, pose.Direction().Dot(mgl64.Vec3{30, 0, 60}.Normalize()), 1e-9)
}

func TestAdvance_RemovesExpiredInSpawnOrder(t *testing.T) {
	m := NewManager(Config{Lifetime: time.Second, Pool: worker.NewPool(4)})
	owner := uuid.New()

	m.Spawn(owner, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1})
	m.Spawn(owner, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1})
	first := m.HandleAt(0).(*PointHandle)
	m.Advance(0.6)
	m.Spawn(owner, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 0, 1})
	before := m.Len()

	removed := m.Advance(0.5)

	require.Len(t, removed, 2)
	assert.Equal(t, 0.0, removed[0].Origin.X())
	assert.Equal(t, 1.0, removed[1].Origin.X())
	assert.Equal(t, StateExpired, removed[0].State)
	assert.Equal(t, before-len(removed), m.Len())
	assert.Equal(t, m.Len(), m.HandleCount())
	assert.True(t, first.Detached())
	assert.Equal(t, 2.0, m.Projectiles()[0].Origin.X())

	// removal is reported once
	assert.Empty(t, m.Advance(0.1))
}

func TestAdvance_ToleratesMissingHandles(t *testing.T) {
	m := NewManager(Config{Lifetime: time.Second})
	owner := uuid.New()
	for i := range 3 {
		m.Spawn(owner, mgl64.Vec3{float64(i), 0, 0}, mgl64.Vec3{0, 0, 1})
	}
	m.DropHandle(2)

	assert.NotPanics(t, func() { m.Advance(0.1) })
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 2, m.HandleCount())

	removed := m.Advance(1)
	assert.Len(t, removed, 3)
	assert.Zero(t, m.Len())
	assert.Zero(t, m.HandleCount())
}

func TestCheckCollision_HitsTargetOncePerCall(t *testing.T) {
	m := NewManager(Config{})
	shooter := uuid.New()
	target := newTarget(mgl64.Vec3{0, 1000, 0})

	m.Spawn(shooter, mgl64.Vec3{0, 1000, 1}, mgl64.Vec3{0, 0, 1})
	m.Spawn(shooter, mgl64.Vec3{1, 1000, 0}, mgl64.Vec3{0, 0, 1})
	m.Spawn(shooter, mgl64.Vec3{0, 2000, 0}, mgl64.Vec3{0, 0, 1})

	result := m.CheckCollision(target)

	assert.Equal(t, 2, result.Hits)
	assert.True(t, result.ShotDown)
	assert.Len(t, result.Projectiles, 2)
	assert.Equal(t, 1, target.hits)
}

func TestCheckCollision_Miss(t *testing.T) {
	m := NewManager(Config{})
	target := newTarget(mgl64.Vec3{0, 1000, 0})
	m.Spawn(uuid.New(), mgl64.Vec3{50, 1000, 0}, mgl64.Vec3{0, 0, 1})

	result := m.CheckCollision(target)

	assert.Zero(t, result.Hits)
	assert.False(t, result.ShotDown)
	assert.Zero(t, target.hits)
}

func TestCheckCollision_IgnoresOwnRounds(t *testing.T) {
	m := NewManager(Config{})
	target := newTarget(mgl64.Vec3{})
	m.Spawn(target.ID(), mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})

	assert.Zero(t, m.CheckCollision(target).Hits)
	assert.Zero(t, target.hits)
}

func TestCheckCollision_ProjectileKeepsFlyingByDefault(t *testing.T) {
	m := NewManager(Config{})
	target := newTarget(mgl64.Vec3{})
	m.Spawn(uuid.New(), mgl64.Vec3{}, mgl64.Vec3{0, 0, 0.1})

	m.CheckCollision(target)
	assert.Empty(t, m.Advance(tick))
	m.CheckCollision(target)

	assert.Equal(t, 2, target.hits)
	assert.Equal(t, 1, m.Len())
}

func TestCheckCollision_ConsumeOnHit(t *testing.T) {
	m := NewManager(Config{ConsumeOnHit: true})
	target := newTarget(mgl64.Vec3{})
	m.Spawn(uuid.New(), mgl64.Vec3{}, mgl64.Vec3{0, 0, 0.1})

	first := m.CheckCollision(target)
	second := m.CheckCollision(target)
	removed := m.Advance(tick)

	assert.Equal(t, 1, first.Hits)
	assert.Zero(t, second.Hits)
	assert.Equal(t, 1, target.hits)
	require.Len(t, removed, 1)
	assert.Equal(t, StateHit, removed[0].State)
	assert.Zero(t, m.HandleCount())
}

func TestConcurrentSpawnAndCollision(t *testing.T) {
	m := NewManager(Config{})
	targets := []*testTarget{newTarget(mgl64.Vec3{}), newTarget(mgl64.Vec3{100, 0, 0})}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				m.Spawn(uuid.New(), mgl64.Vec3{float64(i), 0, 0}, mgl64.Vec3{0, 0, 1})
				m.CheckCollision(targets[i%2])
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, m.Len())
	assert.Equal(t, m.Len(), m.HandleCount())
}

func TestClear(t *testing.T) {
	m := NewManager(Config{})
	m.Spawn(uuid.New(), mgl64.Vec3{}, mgl64.Vec3{})
	h := m.HandleAt(0).(*PointHandle)

	removed := m.Clear()

	assert.Len(t, removed, 1)
	assert.Zero(t, m.Len())
	assert.True(t, h.Detached())
}

const tick = 1.0 / 30
