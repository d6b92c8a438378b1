// Package catalog holds the plane types a mission can spawn.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/viper"

	"github.com/skyhussars/engine/internal/plane"
)

// ErrUnknownPlane is returned when a plane type is not in the catalog.
var ErrUnknownPlane = errors.New("unknown plane type")

// Catalog maps plane type names to descriptors.
type Catalog struct {
	mu     sync.RWMutex
	planes map[string]plane.Descriptor
}

// New returns a catalog holding the built-in planes.
func New() *Catalog {
	c := &Catalog{planes: make(map[string]plane.Descriptor)}
	p80 := P80()
	if err := p80.Validate(); err != nil {
		panic(err)
	}
	c.planes[key(p80.Name)] = p80
	return c
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns a copy of the descriptor for a plane type.
func (c *Catalog) Get(name string) (plane.Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.planes[key(name)]
	if !ok {
		return plane.Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownPlane, name)
	}
	d.Airfoils = slices.Clone(d.Airfoils)
	d.Engines = slices.Clone(d.Engines)
	d.GunGroups = slices.Clone(d.GunGroups)
	return d, nil
}

// Add validates and registers a descriptor, replacing one with the same name.
func (c *Catalog) Add(d plane.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.planes[key(d.Name)] = d
	return nil
}

// Names lists the registered plane types in order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.planes))
	for _, d := range c.planes {
		names = append(names, d.Name)
	}
	slices.Sort(names)
	return names
}

// Load reads extra descriptors from a json, yaml or toml file with a
// top-level "planes" list. Nothing is registered if any descriptor is invalid.
func (c *Catalog) Load(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading plane catalog: %w", err)
	}

	var descriptors []plane.Descriptor
	if err := v.UnmarshalKey("planes", &descriptors); err != nil {
		return fmt.Errorf("decoding plane catalog %s: %w", path, err)
	}
	for i := range descriptors {
		if err := descriptors[i].Validate(); err != nil {
			return fmt.Errorf("plane catalog %s: %w", path, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range descriptors {
		c.planes[key(d.Name)] = d
	}
	return nil
}

// P80 is the built-in jet fighter: one turbojet, six nose guns.
func P80() plane.Descriptor {
	return plane.Descriptor{
		Name:      "p80",
		MassGross: 5500,
		Inertia:   mgl64.Vec3{30000, 45000, 20000},
		HitBox:    mgl64.Vec3{6, 1, 4},
		Airfoils: []plane.AirfoilDescriptor{
			{Name: "WingLeft", RoleName: "leftWing", Cog: mgl64.Vec3{2.5, 0, 0}, Area: 11, Incidence: 1, AspectRatio: 6.4, Dihedral: 2},
			{Name: "WingRight", RoleName: "rightWing", Cog: mgl64.Vec3{-2.5, 0, 0}, Area: 11, Incidence: 1, AspectRatio: 6.4, Dihedral: -2},
			{Name: "HorizontalStabilizer", RoleName: "horizontalStabilizer", Cog: mgl64.Vec3{0, 0, -6}, Area: 3, Incidence: -0.5, AspectRatio: 4, Damper: true},
			{Name: "VerticalStabilizer", RoleName: "verticalStabilizer", Cog: mgl64.Vec3{0, 1, -6}, Area: 1.6, AspectRatio: 1.5, Dihedral: 90, Damper: true},
		},
		Engines: []plane.EngineDescriptor{
			{Location: mgl64.Vec3{0, 0, -1}, MaxThrust: 17000},
		},
		GunGroups: []plane.GunGroupDescriptor{
			{Name: "nose", Guns: 6, RateOfFire: 1200, MuzzleVelocity: 870, Ammo: 300},
		},
	}
}
