package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/skyhussars/engine/pkg/core"
)

// Track builds an EPSG:3857 LineString Z from a sequence of simulation positions.
// At least two of them must differ horizontally.
func (p Projection) Track(positions []core.Position3D) (geom.LineString, error) {
	if len(positions) < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", len(positions))
	}

	flatCoords := make([]float64, 0, len(positions)*3)
	for _, pos := range positions {
		x, y, z := p.To3857(pos)
		flatCoords = append(flatCoords, x, y, z)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXYZ)
	return geom.NewLineString(seq)
}

// TrackWKT renders a track as WKT, or "" when there are too few points.
func (p Projection) TrackWKT(positions []core.Position3D) string {
	ls, err := p.Track(positions)
	if err != nil {
		return ""
	}
	return ls.AsText()
}
