package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/skyhussars/engine/internal/terrain"
)

// ConfigFileName is the file Load looks for in the config directory.
const ConfigFileName = "skyhussars.cfg.json"

// ErrNoAssetDir is returned when no assets directory can be found.
var ErrNoAssetDir = errors.New("assets directory not found")

// SimConfig holds tick engine settings
type SimConfig struct {
	Ticks        int           `json:"ticks" mapstructure:"ticks"`
	Workers      int           `json:"workers" mapstructure:"workers"`
	FPS          int           `json:"fps" mapstructure:"fps"`
	Duration     time.Duration `json:"duration" mapstructure:"duration"`
	Gravity      float64       `json:"gravity" mapstructure:"gravity"`
	InitialSpeed float64       `json:"initialSpeed" mapstructure:"initialSpeed"`
	SpawnHeight  float64       `json:"spawnHeight" mapstructure:"spawnHeight"`
	Terrain      string        `json:"terrain" mapstructure:"terrain"`
	TerrainBase  float64       `json:"terrainBase" mapstructure:"terrainBase"`
	// Respawn puts the player back in the air after a crash instead of ending the run.
	Respawn bool `json:"respawn" mapstructure:"respawn"`
}

// AIConfig holds autonomous pilot tuning
type AIConfig struct {
	MinClearance   float64 `json:"minClearance" mapstructure:"minClearance"`
	LookAhead      float64 `json:"lookAhead" mapstructure:"lookAhead"`
	FiringRange    float64 `json:"firingRange" mapstructure:"firingRange"`
	FiringCone     float64 `json:"firingCone" mapstructure:"firingCone"`
	CruiseThrottle float64 `json:"cruiseThrottle" mapstructure:"cruiseThrottle"`
}

// WeaponsConfig holds projectile settings
type WeaponsConfig struct {
	Lifetime     time.Duration `json:"lifetime" mapstructure:"lifetime"`
	ConsumeOnHit bool          `json:"consumeOnHit" mapstructure:"consumeOnHit"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	Path         string        `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the recording backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// GeoConfig anchors the simulation origin on the globe
type GeoConfig struct {
	OriginLatitude  float64 `json:"originLatitude" mapstructure:"originLatitude"`
	OriginLongitude float64 `json:"originLongitude" mapstructure:"originLongitude"`
}

// PlaneSpawn places one plane at mission start
type PlaneSpawn struct {
	Type    string  `json:"type" mapstructure:"type"`
	Name    string  `json:"name" mapstructure:"name"`
	Player  bool    `json:"player" mapstructure:"player"`
	Faction string  `json:"faction" mapstructure:"faction"`
	X       float64 `json:"x" mapstructure:"x"`
	Z       float64 `json:"z" mapstructure:"z"`
	Height  float64 `json:"height" mapstructure:"height"`
	Heading float64 `json:"heading" mapstructure:"heading"`
}

// MissionConfig describes the mission layout
type MissionConfig struct {
	Name   string       `json:"name" mapstructure:"name"`
	Author string       `json:"author" mapstructure:"author"`
	World  string       `json:"world" mapstructure:"world"`
	Tag    string       `json:"tag" mapstructure:"tag"`
	Planes []PlaneSpawn `json:"planes" mapstructure:"planes"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; headless runs
// without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("defaultTag", "Dogfight")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("sim.ticks", 30)
	viper.SetDefault("sim.workers", 0)
	viper.SetDefault("sim.fps", 60)
	viper.SetDefault("sim.duration", "0s")
	viper.SetDefault("sim.gravity", 10.0)
	viper.SetDefault("sim.initialSpeed", 300.0)
	viper.SetDefault("sim.spawnHeight", 3000.0)
	viper.SetDefault("sim.terrain", "rolling")
	viper.SetDefault("sim.terrainBase", 0.0)
	viper.SetDefault("sim.respawn", false)
	viper.SetDefault("sim.waves", []map[string]any{
		{"amplitude": 120, "wavelength": 9000, "direction": 30, "phase": 0},
		{"amplitude": 40, "wavelength": 2500, "direction": 110, "phase": 1.3},
	})

	viper.SetDefault("ai.minClearance", 300.0)
	viper.SetDefault("ai.lookAhead", 5.0)
	viper.SetDefault("ai.firingRange", 800.0)
	viper.SetDefault("ai.firingCone", 3.0)
	viper.SetDefault("ai.cruiseThrottle", 0.7)

	viper.SetDefault("weapons.lifetime", "3s")
	viper.SetDefault("weapons.consumeOnHit", false)

	viper.SetDefault("recorder.sampleTicks", 30)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.path", "")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.upload", false)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "skyhussars")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "skyhussars")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "skyhussars")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.interval", "10s")
	viper.SetDefault("monitor.statusFile", "")

	viper.SetDefault("geo.originLatitude", 47.4979)
	viper.SetDefault("geo.originLongitude", 19.0402)

	viper.SetDefault("catalog.path", "")

	viper.SetDefault("mission.name", "Dogfight")
	viper.SetDefault("mission.author", "skyhussars")
	viper.SetDefault("mission.world", "Pannonia")
	viper.SetDefault("mission.tag", "")
	viper.SetDefault("mission.planes", []map[string]any{
		{"type": "p80", "name": "player", "player": true, "faction": "blue", "x": 0, "z": 0, "height": 3000, "heading": 0},
		{"type": "p80", "name": "bandit-1", "faction": "red", "x": 200, "z": 4000, "height": 3000, "heading": 180},
		{"type": "p80", "name": "bandit-2", "faction": "red", "x": -200, "z": 4200, "height": 3100, "heading": 180},
	})
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetSimConfig returns the tick engine settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		Ticks:        viper.GetInt("sim.ticks"),
		Workers:      viper.GetInt("sim.workers"),
		FPS:          viper.GetInt("sim.fps"),
		Duration:     viper.GetDuration("sim.duration"),
		Gravity:      viper.GetFloat64("sim.gravity"),
		InitialSpeed: viper.GetFloat64("sim.initialSpeed"),
		SpawnHeight:  viper.GetFloat64("sim.spawnHeight"),
		Terrain:      viper.GetString("sim.terrain"),
		TerrainBase:  viper.GetFloat64("sim.terrainBase"),
		Respawn:      viper.GetBool("sim.respawn"),
	}
}

// GetTerrainWaves returns the rolling terrain components.
func GetTerrainWaves() ([]terrain.Wave, error) {
	var waves []terrain.Wave
	if err := viper.UnmarshalKey("sim.waves", &waves); err != nil {
		return nil, fmt.Errorf("decoding terrain waves: %w", err)
	}
	return waves, nil
}

// GetAIConfig returns the autonomous pilot tuning.
func GetAIConfig() AIConfig {
	return AIConfig{
		MinClearance:   viper.GetFloat64("ai.minClearance"),
		LookAhead:      viper.GetFloat64("ai.lookAhead"),
		FiringRange:    viper.GetFloat64("ai.firingRange"),
		FiringCone:     viper.GetFloat64("ai.firingCone"),
		CruiseThrottle: viper.GetFloat64("ai.cruiseThrottle"),
	}
}

// GetWeaponsConfig returns the projectile settings.
func GetWeaponsConfig() WeaponsConfig {
	return WeaponsConfig{
		Lifetime:     viper.GetDuration("weapons.lifetime"),
		ConsumeOnHit: viper.GetBool("weapons.consumeOnHit"),
	}
}

// GetStorageConfig returns the recording backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			Path:         viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetDBConfig returns the postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the InfluxDB connection settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGeoConfig returns the simulation origin.
func GetGeoConfig() GeoConfig {
	return GeoConfig{
		OriginLatitude:  viper.GetFloat64("geo.originLatitude"),
		OriginLongitude: viper.GetFloat64("geo.originLongitude"),
	}
}

// GetMissionConfig returns the mission layout.
func GetMissionConfig() (MissionConfig, error) {
	var mc MissionConfig
	if err := viper.UnmarshalKey("mission", &mc); err != nil {
		return MissionConfig{}, fmt.Errorf("decoding mission config: %w", err)
	}
	if mc.Tag == "" {
		mc.Tag = viper.GetString("defaultTag")
	}
	return mc, nil
}

// ResolveAssetDir returns the first existing "assets" directory in dir or its parent.
func ResolveAssetDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for _, candidate := range []string{
		filepath.Join(abs, "assets"),
		filepath.Join(filepath.Dir(abs), "assets"),
	} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: searched %s and its parent", ErrNoAssetDir, abs)
}
