package sim

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/internal/catalog"
	"github.com/skyhussars/engine/internal/plane"
	"github.com/skyhussars/engine/internal/worker"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testPlanes(t *testing.T, spawns ...Spawn) []*plane.Plane {
	t.Helper()
	factory := plane.NewFactory(plane.Dependencies{Pool: worker.NewPool(2), Logger: quiet})
	planes := make([]*plane.Plane, 0, len(spawns))
	for _, s := range spawns {
		p, err := factory.Create(catalog.P80(), plane.Options{
			Name:     s.Name,
			Player:   s.Player,
			Faction:  s.Faction,
			Position: s.Position,
			Heading:  s.Heading,
		})
		require.NoError(t, err)
		planes = append(planes, p)
	}
	return planes
}

func dogfight() []Spawn {
	return []Spawn{
		{Type: "p80", Name: "player", Player: true, Faction: "blue", Position: mgl64.Vec3{0, 3000, 0}},
		{Type: "p80", Name: "bandit-1", Faction: "red", Position: mgl64.Vec3{200, 3000, 4000}, Heading: 180},
		{Type: "p80", Name: "bandit-2", Faction: "red", Position: mgl64.Vec3{-200, 3100, 4200}, Heading: 180},
	}
}

func TestNewWorldThread_OnePilotPerAIPlane(t *testing.T) {
	w := NewWorldThread(testPlanes(t, dogfight()...), WorldConfig{Logger: quiet})

	require.Len(t, w.Pilots(), 2)
	for _, p := range w.Pilots() {
		assert.False(t, p.Plane().IsPlayer())
	}
	assert.InDelta(t, 1.0/30, w.TPF(), 1e-12)
	assert.Equal(t, uint64(0), w.Cycle())
}

func TestTick_IntegratesThenCounts(t *testing.T) {
	planes := testPlanes(t, dogfight()[0])
	w := NewWorldThread(planes, WorldConfig{Pool: worker.NewPool(2), Logger: quiet})
	player := planes[0]

	w.Tick()

	assert.Equal(t, uint64(1), w.Cycle())
	// 300 m/s along +Z for one 1/30 s tick
	assert.InDelta(t, 10, player.State().Position.Z(), 0.5)
	// the published pose only moves in the frame pass
	assert.Equal(t, 0.0, player.Position().Z())
}

func TestUpdatePlaneLocations_PublishesAndVisits(t *testing.T) {
	planes := testPlanes(t, dogfight()...)
	w := NewWorldThread(planes, WorldConfig{Pool: worker.NewPool(2), Logger: quiet})
	w.Tick()

	var visited atomic.Int32
	w.UpdatePlaneLocations(1.0/60, func(p *plane.Plane) {
		visited.Add(1)
	})

	assert.Equal(t, int32(3), visited.Load())
	for _, p := range planes {
		assert.Equal(t, p.State().Position, p.Position())
	}
}

func TestTick_WaitsForFramePass(t *testing.T) {
	w := NewWorldThread(testPlanes(t, dogfight()[0]), WorldConfig{Logger: quiet})

	done := make(chan struct{})
	w.Locked(func() {
		go func() {
			w.Tick()
			close(done)
		}()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, uint64(0), w.Cycle(), "tick ran while the frame pass held the lock")
	})

	<-done
	assert.Equal(t, uint64(1), w.Cycle())
}
