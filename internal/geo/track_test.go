package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/pkg/core"
)

func TestTrack_Valid(t *testing.T) {
	p, err := NewProjection(0, 0)
	require.NoError(t, err)

	ls, err := p.Track([]core.Position3D{
		{X: 0, Y: 3000, Z: 0},
		{X: 0, Y: 3010, Z: 300},
		{X: 50, Y: 3020, Z: 600},
	})
	require.NoError(t, err)

	seq := ls.Coordinates()
	require.Equal(t, 3, seq.Length())
	last := seq.Get(2)
	assert.InDelta(t, 50.0, last.X, 1e-6)
	assert.InDelta(t, 600.0, last.Y, 1e-6)
	assert.Equal(t, 3020.0, last.Z)
}

func TestTrack_TooFewPoints(t *testing.T) {
	p, err := NewProjection(0, 0)
	require.NoError(t, err)

	_, err = p.Track([]core.Position3D{{X: 1}})
	require.Error(t, err)
	assert.Equal(t, "", p.TrackWKT(nil))
}

func TestTrack_VerticalOnlyIsInvalid(t *testing.T) {
	p, err := NewProjection(0, 0)
	require.NoError(t, err)

	_, err = p.Track([]core.Position3D{{Y: 3000}, {Y: 2990}})
	require.Error(t, err)
	assert.Equal(t, "", p.TrackWKT([]core.Position3D{{Y: 3000}, {Y: 2990}}))
}

func TestTrackWKT(t *testing.T) {
	p, err := NewProjection(0, 0)
	require.NoError(t, err)

	wkt := p.TrackWKT([]core.Position3D{{Y: 10}, {Y: 20, Z: 100}})
	assert.Contains(t, wkt, "LINESTRING Z")
}
