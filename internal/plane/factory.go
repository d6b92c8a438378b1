package plane

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/skyhussars/engine/internal/physics"
	"github.com/skyhussars/engine/internal/worker"
)

// DefaultInitialSpeed seeds the forward speed at spawn so lift is nonzero from the first tick.
const DefaultInitialSpeed = 300.0

// Options tunes one plane instance.
type Options struct {
	ID       uuid.UUID
	Name     string
	Player   bool
	Faction  string
	Position mgl64.Vec3
	// Heading in degrees about the vertical axis; 0 faces +Z, 90 faces +X.
	Heading      float64
	InitialSpeed float64
	Sounds       Sounds
	Effects      Effects
}

// Dependencies are shared by every plane a factory builds.
type Dependencies struct {
	Spawner ProjectileSpawner
	Pool    *worker.Pool
	Logger  *slog.Logger
}

// Factory builds planes from descriptors.
type Factory struct {
	deps Dependencies
}

func NewFactory(deps Dependencies) *Factory {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Factory{deps: deps}
}

// Create builds a plane. Airfoils are sorted into their role slices once, here.
func (f *Factory) Create(desc Descriptor, opts Options) (*Plane, error) {
	desc.Airfoils = slices.Clone(desc.Airfoils)
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("%s-%s", desc.Name, id.String()[:8])
	}

	p := &Plane{
		id:         id,
		name:       name,
		descriptor: desc.Name,
		player:     opts.Player,
		faction:    opts.Faction,
		hitBox:     desc.HitBox,
		sounds:     opts.Sounds,
		effects:    opts.Effects,
		pool:       f.deps.Pool,
		logger:     f.deps.Logger.With("plane", name),
	}
	if p.sounds == nil {
		p.sounds = nopSounds{}
	}
	if p.effects == nil {
		p.effects = nopEffects{}
	}

	producers := make([]physics.ForceProducer, 0, len(desc.Engines)+len(desc.Airfoils))
	for _, e := range desc.Engines {
		engine := physics.NewEngine(e.Location, e.MaxThrust)
		p.engines = append(p.engines, engine)
		producers = append(producers, engine)
	}
	for _, a := range desc.Airfoils {
		airfoil := physics.NewSymmetricAirfoil(physics.AirfoilParams{
			Name:        a.Name,
			Role:        a.Role,
			Cog:         a.Cog,
			Area:        a.Area,
			Incidence:   a.Incidence,
			AspectRatio: a.AspectRatio,
			Dihedral:    a.Dihedral,
			Damper:      a.Damper,
		})
		producers = append(producers, airfoil)
		switch a.Role {
		case physics.RoleLeftWing:
			p.leftWings = append(p.leftWings, airfoil)
		case physics.RoleRightWing:
			p.rightWings = append(p.rightWings, airfoil)
		case physics.RoleHorizontalStabilizer:
			p.horizontalStabilizers = append(p.horizontalStabilizers, airfoil)
		case physics.RoleVerticalStabilizer:
			p.verticalStabilizers = append(p.verticalStabilizers, airfoil)
		}
	}
	for _, g := range desc.GunGroups {
		p.gunGroups = append(p.gunGroups, NewGunGroup(g, id, f.deps.Spawner))
	}

	rotation := mgl64.QuatRotate(mgl64.DegToRad(opts.Heading), physics.Up)
	p.flight = physics.NewPlanePhysics(rotation, opts.Position, desc.MassGross, desc.Inertia, producers)

	speed := opts.InitialSpeed
	if speed == 0 {
		speed = DefaultInitialSpeed
	}
	p.flight.SetForwardSpeed(speed)
	p.flight.PublishPose(p)

	p.logger.Debug("Plane created", "type", desc.Name, "player", opts.Player, "engines", len(p.engines),
		"airfoils", len(desc.Airfoils), "gunGroups", len(p.gunGroups))
	return p, nil
}
