package terrain

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyhussars/engine/internal/physics"
)

// Surface answers ground height queries.
type Surface interface {
	// Height is the ground elevation below (x, z).
	Height(x, z float64) float64
}

// Flat is level ground at a fixed elevation.
type Flat float64

func (f Flat) Height(_, _ float64) float64 {
	return float64(f)
}

// Wave is one sinusoidal component of a Rolling surface.
type Wave struct {
	Amplitude  float64 `mapstructure:"amplitude" json:"amplitude"`
	Wavelength float64 `mapstructure:"wavelength" json:"wavelength"`
	// Direction in degrees about the vertical axis.
	Direction float64 `mapstructure:"direction" json:"direction"`
	Phase     float64 `mapstructure:"phase" json:"phase"`
}

// Rolling is a base elevation plus a sum of waves.
type Rolling struct {
	Base  float64
	Waves []Wave
}

func (r Rolling) Height(x, z float64) float64 {
	h := r.Base
	for _, w := range r.Waves {
		if w.Wavelength <= 0 {
			continue
		}
		rad := mgl64.DegToRad(w.Direction)
		along := x*math.Sin(rad) + z*math.Cos(rad)
		h += w.Amplitude * math.Sin(2*math.Pi*along/w.Wavelength+w.Phase)
	}
	return h
}

// Max is the highest elevation the surface can reach.
func (r Rolling) Max() float64 {
	h := r.Base
	for _, w := range r.Waves {
		h += math.Abs(w.Amplitude)
	}
	return h
}

// New builds a surface by kind: "flat" or "rolling".
func New(kind string, base float64, waves []Wave) (Surface, error) {
	switch kind {
	case "", "flat":
		return Flat(base), nil
	case "rolling":
		return Rolling{Base: base, Waves: waves}, nil
	default:
		return nil, fmt.Errorf("unknown terrain kind %q", kind)
	}
}

// Collides reports whether any corner of the box is at or below the ground.
func Collides(s Surface, box physics.OrientedBox) bool {
	for _, c := range box.Corners() {
		if c.Y() <= s.Height(c.X(), c.Z()) {
			return true
		}
	}
	return false
}

// Clearance is the height of p above the ground below it.
func Clearance(s Surface, p mgl64.Vec3) float64 {
	return p.Y() - s.Height(p.X(), p.Z())
}
