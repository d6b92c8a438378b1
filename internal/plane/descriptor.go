package plane

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyhussars/engine/internal/physics"
)

// AirfoilDescriptor describes one aerodynamic surface. Angles are in degrees.
type AirfoilDescriptor struct {
	Name        string       `mapstructure:"name" json:"name"`
	Role        physics.Role `mapstructure:"-" json:"-"`
	RoleName    string       `mapstructure:"role" json:"role"`
	Cog         mgl64.Vec3   `mapstructure:"cog" json:"cog"`
	Area        float64      `mapstructure:"area" json:"area"`
	Incidence   float64      `mapstructure:"incidence" json:"incidence"`
	AspectRatio float64      `mapstructure:"aspectRatio" json:"aspectRatio"`
	Dihedral    float64      `mapstructure:"dihedral" json:"dihedral"`
	Damper      bool         `mapstructure:"damper" json:"damper"`
}

// EngineDescriptor places an engine on the airframe.
type EngineDescriptor struct {
	Location  mgl64.Vec3 `mapstructure:"location" json:"location"`
	MaxThrust float64    `mapstructure:"maxThrust" json:"maxThrust"`
}

// GunGroupDescriptor describes guns that share one trigger.
type GunGroupDescriptor struct {
	Name string `mapstructure:"name" json:"name"`
	// Offset of the muzzles from the aircraft origin, body frame.
	Offset mgl64.Vec3 `mapstructure:"offset" json:"offset"`
	Guns   int        `mapstructure:"guns" json:"guns"`
	// RateOfFire is rounds per minute per gun.
	RateOfFire     float64 `mapstructure:"rateOfFire" json:"rateOfFire"`
	MuzzleVelocity float64 `mapstructure:"muzzleVelocity" json:"muzzleVelocity"`
	// Ammo is rounds per gun, 0 means unlimited.
	Ammo int `mapstructure:"ammo" json:"ammo"`
	// InheritVelocity adds the aircraft's velocity to the muzzle velocity.
	InheritVelocity bool `mapstructure:"inheritVelocity" json:"inheritVelocity"`
}

// Descriptor is a plane type.
type Descriptor struct {
	Name      string               `mapstructure:"name" json:"name"`
	MassGross float64              `mapstructure:"massGross" json:"massGross"`
	Inertia   mgl64.Vec3           `mapstructure:"inertia" json:"inertia"`
	HitBox    mgl64.Vec3           `mapstructure:"hitBox" json:"hitBox"`
	Airfoils  []AirfoilDescriptor  `mapstructure:"airfoils" json:"airfoils"`
	Engines   []EngineDescriptor   `mapstructure:"engines" json:"engines"`
	GunGroups []GunGroupDescriptor `mapstructure:"gunGroups" json:"gunGroups"`
}

// ErrInvalidDescriptor is returned when a plane type cannot be built.
var ErrInvalidDescriptor = errors.New("invalid plane descriptor")

// Validate resolves role names and checks the descriptor is usable.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidDescriptor)
	}
	if d.MassGross <= 0 {
		return fmt.Errorf("%w: %s: mass must be positive", ErrInvalidDescriptor, d.Name)
	}
	if len(d.Engines) == 0 {
		return fmt.Errorf("%w: %s: no engines", ErrInvalidDescriptor, d.Name)
	}
	for i := range d.Airfoils {
		a := &d.Airfoils[i]
		if a.RoleName != "" {
			role, err := physics.ParseRole(a.RoleName)
			if err != nil {
				return fmt.Errorf("%w: %s: airfoil %s: %w", ErrInvalidDescriptor, d.Name, a.Name, err)
			}
			a.Role = role
		}
		a.RoleName = a.Role.String()
		if a.Area <= 0 {
			return fmt.Errorf("%w: %s: airfoil %s: area must be positive", ErrInvalidDescriptor, d.Name, a.Name)
		}
	}
	for _, g := range d.GunGroups {
		if g.Guns <= 0 || g.RateOfFire <= 0 {
			return fmt.Errorf("%w: %s: gun group %s needs guns and a rate of fire", ErrInvalidDescriptor, d.Name, g.Name)
		}
	}
	return nil
}
