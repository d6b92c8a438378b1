package cache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/skyhussars/engine/pkg/core"
)

// AircraftCache caches aircraft when they join so state handlers can
// validate and enrich samples without asking the storage backend.
type AircraftCache struct {
	m        sync.RWMutex
	Aircraft map[uuid.UUID]core.Aircraft
}

func NewAircraftCache() *AircraftCache {
	return &AircraftCache{
		Aircraft: make(map[uuid.UUID]core.Aircraft),
	}
}

func (c *AircraftCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Aircraft = make(map[uuid.UUID]core.Aircraft)
}

func (c *AircraftCache) Get(id uuid.UUID) (core.Aircraft, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	a, ok := c.Aircraft[id]
	return a, ok
}

// Add stores a; it reports false when the id was already known.
func (c *AircraftCache) Add(a core.Aircraft) bool {
	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.Aircraft[a.ID]; ok {
		return false
	}
	c.Aircraft[a.ID] = a
	return true
}

func (c *AircraftCache) Len() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return len(c.Aircraft)
}
