package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/skyhussars/engine/internal/catalog"
	"github.com/skyhussars/engine/internal/plane"
	"github.com/skyhussars/engine/internal/weapons"
	"github.com/skyhussars/engine/internal/worker"
)

// Spawn places one plane at mission start.
type Spawn struct {
	Type     string
	Name     string
	Player   bool
	Faction  string
	Position mgl64.Vec3
	// Heading in degrees; 0 faces +Z (north).
	Heading float64
}

// BuildConfig is everything needed to assemble a mission.
type BuildConfig struct {
	Catalog      *catalog.Catalog
	Spawns       []Spawn
	World        WorldConfig
	InitialSpeed float64
	// Lifetime of a projectile; zero uses the weapons default.
	Lifetime     time.Duration
	ConsumeOnHit bool
	// Sounds returns the audio of one plane; nil plays nothing.
	Sounds  func(s Spawn) plane.Sounds
	Effects plane.Effects
	Options Options
}

// Build creates the planes, the projectile manager and the tick engine,
// and returns the mission wrapping them. The mission is idle until the
// first Update.
func Build(cfg BuildConfig) (*Mission, error) {
	players := 0
	for _, s := range cfg.Spawns {
		if s.Player {
			players++
		}
	}
	if players != 1 {
		return nil, fmt.Errorf("%w: found %d", ErrPlayerCount, players)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.New()
	}
	if cfg.World.Logger == nil {
		cfg.World.Logger = slog.Default()
	}
	if cfg.World.Pool == nil {
		cfg.World.Pool = worker.NewPool(0)
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.World.Logger
	}
	if cfg.Options.Recorder == nil {
		cfg.Options.Recorder = NewRecorder(nil, cfg.Options.Clock, cfg.Options.Logger)
	}

	projectiles := weapons.NewManager(weapons.Config{
		Lifetime:     cfg.Lifetime,
		ConsumeOnHit: cfg.ConsumeOnHit,
		Listener:     cfg.Options.Recorder,
		Pool:         cfg.World.Pool,
		Logger:       cfg.World.Logger.With("component", "weapons"),
	})
	factory := plane.NewFactory(plane.Dependencies{
		Spawner: projectiles,
		Pool:    cfg.World.Pool,
		Logger:  cfg.World.Logger,
	})

	planes := make([]*plane.Plane, 0, len(cfg.Spawns))
	for i, s := range cfg.Spawns {
		desc, err := cfg.Catalog.Get(s.Type)
		if err != nil {
			return nil, fmt.Errorf("spawn %d: %w", i, err)
		}
		opts := plane.Options{
			Name:         s.Name,
			Player:       s.Player,
			Faction:      s.Faction,
			Position:     s.Position,
			Heading:      s.Heading,
			InitialSpeed: cfg.InitialSpeed,
			Effects:      cfg.Effects,
		}
		if cfg.Sounds != nil {
			opts.Sounds = cfg.Sounds(s)
		}
		p, err := factory.Create(desc, opts)
		if err != nil {
			return nil, fmt.Errorf("spawn %d: %w", i, err)
		}
		planes = append(planes, p)
	}

	world := NewWorldThread(planes, cfg.World)
	m, err := NewMission(world, projectiles, cfg.Options)
	if err != nil {
		return nil, err
	}
	cfg.World.Logger.Info("Mission built", "planes", len(planes), "pilots", len(world.Pilots()),
		"ticks", int(1/world.TPF()+0.5))
	return m, nil
}
