package physics

import "math"

// DefaultGravity matches the acceleration used by the flight model (m/s²).
const DefaultGravity = 10.0

// Atmosphere reports air density (kg/m³) for an altitude in meters.
type Atmosphere interface {
	AirDensity(altitude float64) float64
}

// Environment is shared read-only by every force computation during a tick.
type Environment struct {
	Gravity    float64
	Atmosphere Atmosphere
}

// NewEnvironment creates an environment with the standard atmosphere.
func NewEnvironment(gravity float64) Environment {
	return Environment{
		Gravity:    gravity,
		Atmosphere: StandardAtmosphere{},
	}
}

// AirDensity falls back to sea level density when no atmosphere is set.
func (e Environment) AirDensity(altitude float64) float64 {
	if e.Atmosphere == nil {
		return seaLevelDensity
	}
	return e.Atmosphere.AirDensity(altitude)
}

const (
	seaLevelDensity     = 1.225
	tropopauseAltitude  = 11000.0
	tropopauseDensity   = 0.3639
	stratosphereScaleHt = 6341.6
)

// StandardAtmosphere is the ISA troposphere with an exponential stratosphere.
type StandardAtmosphere struct{}

func (StandardAtmosphere) AirDensity(altitude float64) float64 {
	if altitude <= 0 {
		return seaLevelDensity
	}
	if altitude <= tropopauseAltitude {
		return seaLevelDensity * math.Pow(1-2.25577e-5*altitude, 4.2559)
	}
	return tropopauseDensity * math.Exp(-(altitude-tropopauseAltitude)/stratosphereScaleHt)
}

// ConstantAtmosphere returns the same density everywhere.
type ConstantAtmosphere float64

func (c ConstantAtmosphere) AirDensity(float64) float64 {
	return float64(c)
}
