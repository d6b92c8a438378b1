package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/skyhussars/engine/pkg/core"
)

// GEO POINTS
// Simulation positions are metres east (X), up (Y) and north (Z) of an origin.
// They are stored as EPSG:3857 so the relational backends can keep WKB geometry
// without spatial extensions, and converted to EPSG:4326 for display.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Projection maps simulation metres onto the globe around a fixed origin.
type Projection struct {
	originLongitude float64
	originLatitude  float64
	originX         float64
	originY         float64
	// Web Mercator stretches distances by 1/cos(latitude)
	scale float64
}

// NewProjection anchors the simulation origin at the given WGS84 location.
func NewProjection(latitude, longitude float64) (Projection, error) {
	if math.IsNaN(latitude) || math.IsNaN(longitude) || math.Abs(latitude) >= 85 || math.Abs(longitude) > 180 {
		return Projection{}, ErrInvalidCoordinates
	}
	x, y, _ := wgs84.EPSG().Transform(4326, 3857)(longitude, latitude, 0)
	return Projection{
		originLongitude: longitude,
		originLatitude:  latitude,
		originX:         x,
		originY:         y,
		scale:           1 / math.Cos(latitude*math.Pi/180),
	}, nil
}

// Origin returns the anchor as latitude, longitude.
func (p Projection) Origin() (float64, float64) {
	return p.originLatitude, p.originLongitude
}

// To3857 converts a simulation position to Web Mercator metres with altitude.
func (p Projection) To3857(pos core.Position3D) (x, y, z float64) {
	return p.originX + pos.X*p.scale, p.originY + pos.Z*p.scale, pos.Y
}

// Point returns the simulation position as an EPSG:3857 XYZ point. It fails
// for non-finite positions.
func (p Projection) Point(pos core.Position3D) (geom.Point, error) {
	x, y, z := p.To3857(pos)
	pt, err := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Z:    z,
			Type: geom.DimXYZ,
		},
	)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid position %v: %w", pos, err)
	}
	return pt, nil
}

// ToGeo converts a simulation position to WGS84.
func (p Projection) ToGeo(pos core.Position3D) core.GeoPoint {
	x, y, z := p.To3857(pos)
	lon, lat, _ := wgs84.EPSG().Transform(3857, 4326)(x, y, 0)
	return core.GeoPoint{Latitude: lat, Longitude: lon, Altitude: z}
}

// ParseLatLon parses a "lat,lon" string.
func ParseLatLon(coords string) (latitude, longitude float64, err error) {
	parts := strings.Split(coords, ",")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidCoordinates
	}
	latitude, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	longitude, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	return latitude, longitude, nil
}
