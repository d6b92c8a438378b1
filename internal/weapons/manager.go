package weapons

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/skyhussars/engine/internal/physics"
	"github.com/skyhussars/engine/internal/worker"
)

// Target is anything projectiles can hit.
type Target interface {
	ID() uuid.UUID
	HitBox() physics.OrientedBox
	// Hit reports whether the hit shot the target down.
	Hit() bool
}

// SpawnListener is told about every new projectile.
type SpawnListener interface {
	ProjectileSpawned(p Projectile)
}

// CollisionResult summarises one CheckCollision call.
type CollisionResult struct {
	// Hits counts the projectiles found inside the target.
	Hits int
	// ShotDown is true when this call shot the target down.
	ShotDown bool
	// Projectiles are copies of the projectiles that hit.
	Projectiles []Projectile
}

// Config configures a Manager.
type Config struct {
	Lifetime time.Duration
	// ConsumeOnHit retires a projectile once it hits something.
	// Otherwise a round keeps flying and can register hits until it expires.
	ConsumeOnHit bool
	Handles      HandleFactory
	Listener     SpawnListener
	Pool         *worker.Pool
	Logger       *slog.Logger
}

// Manager owns every projectile in flight and its presentation handle.
// projectiles[i] and handles[i] always belong together; spawn order is kept.
type Manager struct {
	mu          sync.RWMutex
	projectiles []*Projectile
	handles     []Handle
	clock       time.Duration

	lifetime     time.Duration
	consumeOnHit bool
	handleOf     HandleFactory
	listener     SpawnListener
	pool         *worker.Pool
	logger       *slog.Logger
}

func NewManager(cfg Config) *Manager {
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = DefaultLifetime
	}
	if cfg.Handles == nil {
		cfg.Handles = HandleFactoryFunc(NewPointHandle)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		lifetime:     cfg.Lifetime,
		consumeOnHit: cfg.ConsumeOnHit,
		handleOf:     cfg.Handles,
		listener:     cfg.Listener,
		pool:         cfg.Pool,
		logger:       cfg.Logger,
	}
}

// Spawn creates a live projectile and its handle.
func (m *Manager) Spawn(owner uuid.UUID, position, velocity mgl64.Vec3) {
	m.mu.Lock()
	p := &Projectile{
		ID:        uuid.New(),
		Owner:     owner,
		SpawnedAt: m.clock,
		Origin:    position,
		Position:  position,
		Velocity:  velocity,
		Lifetime:  m.lifetime,
		State:     StateLive,
	}
	handle := m.handleOf.NewHandle(*p)
	m.projectiles = append(m.projectiles, p)
	m.handles = append(m.handles, handle)
	snapshot := *p
	m.mu.Unlock()

	if m.listener != nil {
		m.listener.ProjectileSpawned(snapshot)
	}
}

// Advance moves every projectile by dt, drops the ones that are no longer
// live together with their handles and republishes the survivors. The removed
// projectiles are returned once, in spawn order.
func (m *Manager) Advance(dt float64) []Projectile {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clock += time.Duration(dt * float64(time.Second))
	worker.ForEach(m.pool, m.projectiles, func(p *Projectile) {
		p.advance(dt)
	})

	var removed []Projectile
	keptProjectiles := m.projectiles[:0]
	keptHandles := m.handles[:0]
	orphans := 0
	for i, p := range m.projectiles {
		var handle Handle
		if i < len(m.handles) {
			handle = m.handles[i]
		}
		if !p.Live() {
			removed = append(removed, *p)
			if handle != nil {
				handle.Detach()
			}
			continue
		}
		keptProjectiles = append(keptProjectiles, p)
		if handle == nil {
			orphans++
			continue
		}
		handle.SetPose(p.Pose())
		keptHandles = append(keptHandles, handle)
	}
	// handles beyond the projectiles have nothing to show
	for i := len(m.projectiles); i < len(m.handles); i++ {
		m.handles[i].Detach()
		orphans++
	}
	clear(m.projectiles[len(keptProjectiles):])
	clear(m.handles[len(keptHandles):])
	m.projectiles = keptProjectiles
	m.handles = keptHandles

	if orphans > 0 {
		m.logger.Debug("Projectile handles out of step", "orphans", orphans,
			"projectiles", len(m.projectiles), "handles", len(m.handles))
	}
	return removed
}

// CheckCollision tests every live projectile's handle against the target's
// hit box. When any is inside, target.Hit is called exactly once.
// A target's own rounds never hit it.
func (m *Manager) CheckCollision(target Target) CollisionResult {
	if m.consumeOnHit {
		m.mu.Lock()
		defer m.mu.Unlock()
	} else {
		m.mu.RLock()
		defer m.mu.RUnlock()
	}

	box := target.HitBox()
	owner := target.ID()
	var result CollisionResult
	for i, p := range m.projectiles {
		if i >= len(m.handles) {
			break
		}
		if !p.Live() || p.Owner == owner {
			continue
		}
		if !box.Contains(m.handles[i].Position()) {
			continue
		}
		result.Hits++
		if m.consumeOnHit {
			p.State = StateHit
			p.Hits++
		}
		result.Projectiles = append(result.Projectiles, *p)
	}
	if result.Hits > 0 {
		result.ShotDown = target.Hit()
	}
	return result
}

// Len is the number of projectiles in flight.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.projectiles)
}

// Projectiles returns copies of the projectiles in spawn order.
func (m *Manager) Projectiles() []Projectile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Projectile, len(m.projectiles))
	for i, p := range m.projectiles {
		out[i] = *p
	}
	return out
}

// Clear removes every projectile and detaches every handle.
func (m *Manager) Clear() []Projectile {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := make([]Projectile, len(m.projectiles))
	for i, p := range m.projectiles {
		removed[i] = *p
	}
	for _, h := range m.handles {
		h.Detach()
	}
	m.projectiles = nil
	m.handles = nil
	return removed
}
