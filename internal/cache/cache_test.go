package cache

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/skyhussars/engine/pkg/core"
)

func TestAircraftCache_AddGet(t *testing.T) {
	c := NewAircraftCache()
	id := uuid.New()

	_, ok := c.Get(id)
	assert.False(t, ok)

	assert.True(t, c.Add(core.Aircraft{ID: id, Name: "player"}))
	assert.False(t, c.Add(core.Aircraft{ID: id, Name: "dupe"}))

	a, ok := c.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "player", a.Name)
	assert.Equal(t, 1, c.Len())
}

func TestAircraftCache_Reset(t *testing.T) {
	c := NewAircraftCache()
	c.Add(core.Aircraft{ID: uuid.New()})
	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func TestAircraftCache_Concurrent(t *testing.T) {
	c := NewAircraftCache()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := uuid.New()
			c.Add(core.Aircraft{ID: id})
			c.Get(id)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}
