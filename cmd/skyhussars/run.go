package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/skyhussars/engine/internal/ai"
	"github.com/skyhussars/engine/internal/api"
	"github.com/skyhussars/engine/internal/config"
	"github.com/skyhussars/engine/internal/dispatcher"
	"github.com/skyhussars/engine/internal/geo"
	"github.com/skyhussars/engine/internal/influx"
	"github.com/skyhussars/engine/internal/logging"
	"github.com/skyhussars/engine/internal/monitor"
	"github.com/skyhussars/engine/internal/physics"
	"github.com/skyhussars/engine/internal/sim"
	"github.com/skyhussars/engine/internal/storage"
	"github.com/skyhussars/engine/internal/terrain"
	"github.com/skyhussars/engine/internal/worker"
	"github.com/skyhussars/engine/pkg/core"
)

// hudInterval is how often the headless HUD line is logged.
const hudInterval = 5 * time.Second

// spawnsFromConfig turns the mission layout into sim spawns, filling in
// the default spawn height.
func spawnsFromConfig(planes []config.PlaneSpawn, spawnHeight float64) []sim.Spawn {
	spawns := make([]sim.Spawn, 0, len(planes))
	for i, p := range planes {
		height := p.Height
		if height == 0 {
			height = spawnHeight
		}
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", p.Type, i+1)
		}
		spawns = append(spawns, sim.Spawn{
			Type:     p.Type,
			Name:     name,
			Player:   p.Player,
			Faction:  p.Faction,
			Position: mgl64.Vec3{p.X, height, p.Z},
			Heading:  p.Heading,
		})
	}
	return spawns
}

func newInfluxManager(ctx context.Context) *influx.Manager {
	backupPath := filepath.Join(
		viper.GetString("logsDir"),
		fmt.Sprintf("influx_%s.lp.gz", SessionStartTime.Format("20060102_150405")),
	)
	m := influx.NewManager(config.GetInfluxConfig(), Zerolog, backupPath)
	if err := m.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			Logger.Warn("InfluxDB unavailable, telemetry disabled", "error", err)
		}
		return nil
	}
	return m
}

// run flies the configured mission until it ends, the duration passes or
// ctx is cancelled, then records and uploads the result.
func run(ctx context.Context) error {
	simCfg := config.GetSimConfig()
	missionCfg, err := config.GetMissionConfig()
	if err != nil {
		return err
	}
	geoCfg := config.GetGeoConfig()
	projection, err := geo.NewProjection(geoCfg.OriginLatitude, geoCfg.OriginLongitude)
	if err != nil {
		return fmt.Errorf("invalid geo origin: %w", err)
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	waves, err := config.GetTerrainWaves()
	if err != nil {
		return err
	}
	surface, err := terrain.New(simCfg.Terrain, simCfg.TerrainBase, waves)
	if err != nil {
		return err
	}

	eventDispatcher, err := dispatcher.New(logging.NewDispatcherLogger(logging.Sampled(Zerolog)))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	backend, err := initStorage(projection)
	if err != nil {
		return err
	}

	influxManager := newInfluxManager(ctx)

	workerManager := worker.NewManager(worker.Dependencies{
		AircraftCache:  AircraftCache,
		LogManager:     SlogManager,
		MissionContext: MissionContext,
		Projection:     &projection,
		Influx:         influxManager,
	}, backend)
	Logger.Debug("Registering worker handlers with dispatcher")
	workerManager.RegisterHandlers(eventDispatcher)

	coreMission := &core.Mission{
		ID:            uuid.New(),
		Name:          missionCfg.Name,
		Author:        missionCfg.Author,
		StartTime:     time.Now(),
		TickRate:      simCfg.Ticks,
		EngineVersion: CurrentEngineVersion,
		Tag:           missionCfg.Tag,
	}
	coreWorld := &core.World{
		Name:            missionCfg.World,
		Terrain:         simCfg.Terrain,
		OriginLatitude:  geoCfg.OriginLatitude,
		OriginLongitude: geoCfg.OriginLongitude,
	}
	if err := workerManager.StartMission(coreMission, coreWorld); err != nil {
		eventDispatcher.Close()
		_ = backend.Close()
		return err
	}

	aiCfg := config.GetAIConfig()
	weaponsCfg := config.GetWeaponsConfig()
	speedometer := &sim.TextSpeedometer{}
	recorder := sim.NewRecorder(eventDispatcher, time.Now, Logger)

	m, err := sim.Build(sim.BuildConfig{
		Catalog: cat,
		Spawns:  spawnsFromConfig(missionCfg.Planes, simCfg.SpawnHeight),
		World: sim.WorldConfig{
			Ticks:       simCfg.Ticks,
			Environment: physics.NewEnvironment(simCfg.Gravity),
			Terrain:     surface,
			Pilot: ai.Config{
				MinClearance:   aiCfg.MinClearance,
				LookAhead:      aiCfg.LookAhead,
				FiringRange:    aiCfg.FiringRange,
				FiringCone:     aiCfg.FiringCone,
				CruiseThrottle: aiCfg.CruiseThrottle,
			},
			Pool:   worker.NewPool(simCfg.Workers),
			Logger: Logger,
		},
		InitialSpeed: simCfg.InitialSpeed,
		Lifetime:     weaponsCfg.Lifetime,
		ConsumeOnHit: weaponsCfg.ConsumeOnHit,
		Options: sim.Options{
			SampleTicks: viper.GetInt("recorder.sampleTicks"),
			Speedometer: speedometer,
			Recorder:    recorder,
			Context:     MissionContext,
			Logger:      Logger,
		},
	})
	if err != nil {
		eventDispatcher.Close()
		_ = workerManager.EndMission()
		_ = backend.Close()
		return err
	}
	if err := m.RegisterAircraft(); err != nil {
		Logger.Warn("Some aircraft were not registered", "error", err)
	}

	statusMonitor := monitor.NewService(monitor.Dependencies{
		LogManager:     SlogManager,
		MissionContext: MissionContext,
		Sample:         m.Sample,
		Record:         recorder.Performance,
		Influx:         influxManager,
		StatusFile:     viper.GetString("monitor.statusFile"),
		Interval:       viper.GetDuration("monitor.interval"),
	})
	if err := statusMonitor.Start(); err != nil {
		Logger.Warn("Status monitor not started", "error", err)
	}

	Logger.Info("Mission started",
		"aircraft", len(m.World().Planes()),
		"ticks", simCfg.Ticks,
		"fps", simCfg.FPS,
		"duration", simCfg.Duration)

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer cancel()
		return fly(gctx, m, simCfg)
	})
	g.Go(func() error {
		hud(gctx, m, speedometer)
		return nil
	})
	runErr := g.Wait()
	cancel()

	statusMonitor.Stop()
	final := m.Sample()
	Logger.Info("Mission finished",
		"frames", m.Frames(),
		"ticks", m.World().Cycle(),
		"overruns", final.Overruns,
		"ended", final.Ended,
		"failedEvents", recorder.Failed())

	m.Close()
	eventDispatcher.Close()
	if err := workerManager.EndMission(); err != nil {
		Logger.Error("Failed to end mission", "error", err)
	}
	uploadRecording(backend)
	if err := backend.Close(); err != nil {
		Logger.Error("Failed to close storage backend", "error", err)
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Error("Failed to close InfluxDB manager", "error", err)
		}
	}

	return runErr
}

// fly runs the frame loop, respawning the player after a crash when enabled.
func fly(ctx context.Context, m *sim.Mission, simCfg config.SimConfig) error {
	var deadline time.Time
	if simCfg.Duration > 0 {
		deadline = time.Now().Add(simCfg.Duration)
	}
	for {
		var remaining time.Duration
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return nil
			}
		}
		if err := m.Run(ctx, simCfg.FPS, remaining); err != nil {
			return err
		}
		if !m.Ended() || !simCfg.Respawn {
			return nil
		}
		Logger.Info("Player crashed, respawning", "position", sim.PlayerRespawn)
		m.ReinitPlayer()
	}
}

// hud logs the speedometer and player state until ctx is done.
func hud(ctx context.Context, m *sim.Mission, speedometer *sim.TextSpeedometer) {
	ticker := time.NewTicker(hudInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			player := m.Player()
			pos := player.Position()
			Logger.Info("HUD",
				"speed", speedometer.Text(),
				"altitude", fmt.Sprintf("%.0f", pos.Y()),
				"throttle", player.Throttle(),
				"live", m.Projectiles().Len(),
				"frame", m.Frames())
		}
	}
}

// uploadRecording sends the exported recording to the debrief server.
func uploadRecording(backend storage.Backend) {
	if !viper.GetBool("api.upload") {
		return
	}
	uploadable, ok := backend.(storage.Uploadable)
	if !ok {
		Logger.Debug("Storage backend produces no upload file")
		return
	}
	path := uploadable.GetExportedFilePath()
	if path == "" {
		Logger.Warn("No exported recording to upload")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	client := api.New(viper.GetString("api.serverUrl"), viper.GetString("api.apiKey"))
	if err := client.Healthcheck(ctx); err != nil {
		Logger.Warn("Debrief server unavailable, recording kept locally", "path", path, "error", err)
		return
	}
	if err := client.Upload(ctx, path, uploadable.GetExportMetadata()); err != nil {
		Logger.Error("Failed to upload recording", "path", path, "error", err)
		return
	}
	Logger.Info("Recording uploaded", "path", path)
}
