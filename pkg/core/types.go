package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Position3D is a point in the simulation frame.
type Position3D struct {
	X float64 `json:"x"` // east
	Y float64 `json:"y"` // altitude
	Z float64 `json:"z"` // north
}

// PositionFromVec converts a simulation vector.
func PositionFromVec(v mgl64.Vec3) Position3D {
	return Position3D{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Vec returns the position as a simulation vector.
func (p Position3D) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// GeoPoint is a WGS84 location with altitude in metres.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  float64 `json:"alt"`
}

// Frame is a simulation tick number.
type Frame uint64

// UploadMetadata describes an exported recording for upload.
type UploadMetadata struct {
	MissionName string
	WorldName   string
	Duration    float64
	Tag         string
	Aircraft    int
}
