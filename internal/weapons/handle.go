package weapons

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyhussars/engine/internal/physics"
)

// Handle is the presentation and collision representation of one projectile.
type Handle interface {
	physics.PoseSink
	Position() mgl64.Vec3
	Detach()
}

// HandleFactory creates the handle for a newly spawned projectile.
type HandleFactory interface {
	NewHandle(p Projectile) Handle
}

// HandleFactoryFunc adapts a function to HandleFactory.
type HandleFactoryFunc func(p Projectile) Handle

func (f HandleFactoryFunc) NewHandle(p Projectile) Handle {
	return f(p)
}

// PointHandle is the headless handle: a point at the last published pose.
type PointHandle struct {
	mu       sync.RWMutex
	pose     physics.Pose
	detached bool
}

func NewPointHandle(p Projectile) Handle {
	return &PointHandle{pose: p.Pose()}
}

func (h *PointHandle) SetPose(pose physics.Pose) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pose = pose
}

func (h *PointHandle) Position() mgl64.Vec3 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pose.Position
}

func (h *PointHandle) Pose() physics.Pose {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.pose
}

func (h *PointHandle) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detached = true
}

func (h *PointHandle) Detached() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.detached
}
