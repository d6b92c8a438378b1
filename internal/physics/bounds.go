package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// OrientedBox is a bounding volume aligned with a body's axes.
type OrientedBox struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Rotation    mgl64.Quat
}

// Contains reports whether p lies inside or on the box.
func (b OrientedBox) Contains(p mgl64.Vec3) bool {
	rot := b.Rotation
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	local := rot.Inverse().Rotate(p.Sub(b.Center))
	return math.Abs(local.X()) <= b.HalfExtents.X() &&
		math.Abs(local.Y()) <= b.HalfExtents.Y() &&
		math.Abs(local.Z()) <= b.HalfExtents.Z()
}

// Corners returns the eight world-space corners.
func (b OrientedBox) Corners() [8]mgl64.Vec3 {
	rot := b.Rotation
	if rot.Len() == 0 {
		rot = mgl64.QuatIdent()
	}
	var out [8]mgl64.Vec3
	h := b.HalfExtents
	i := 0
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				out[i] = b.Center.Add(rot.Rotate(mgl64.Vec3{sx * h.X(), sy * h.Y(), sz * h.Z()}))
				i++
			}
		}
	}
	return out
}

// Lowest returns the lowest world-space point of the box.
func (b OrientedBox) Lowest() mgl64.Vec3 {
	corners := b.Corners()
	low := corners[0]
	for _, c := range corners[1:] {
		if c.Y() < low.Y() {
			low = c
		}
	}
	return low
}
