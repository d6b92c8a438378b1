package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/skyhussars/engine/internal/cache"
	"github.com/skyhussars/engine/internal/catalog"
	"github.com/skyhussars/engine/internal/config"
	"github.com/skyhussars/engine/internal/logging"
	"github.com/skyhussars/engine/internal/mission"
	intOtel "github.com/skyhussars/engine/internal/otel"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentEngineVersion string = "0.0.1"
	BuildDate            string = "unknown"

	AppName string = "skyhussars"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// Zerolog backs the database, influx and dispatcher layers
	Zerolog zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	// MissionContext tags every log line with the running mission
	MissionContext *mission.Context = mission.NewContext()

	// AircraftCache maps aircraft IDs to their registration for the current mission
	AircraftCache *cache.AircraftCache = cache.NewAircraftCache()

	SessionStartTime time.Time = time.Now()

	LogFile *os.File

	configDir string
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [-config dir] [command]

Commands:
  run             fly the configured mission (default)
  planes          list the plane catalog
  migratebackups  copy SQLite backups in the recordings dir into Postgres
`, AppName)
	flag.PrintDefaults()
}

// setup loads the config and brings up logging: a bootstrap stdout logger
// first, then the file, OTel and remote sinks.
func setup() error {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		config.SetDefaults()
		Logger.Warn("Failed to load config, using defaults", "error", err, "dir", configDir)
	}

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("error creating logs directory: %w", err)
	}
	logFilePath := logging.LogFilePath(logsDir, AppName, SessionStartTime)
	if _, err := os.Stat(logFilePath); err == nil {
		_ = os.Rename(logFilePath, logFilePath+".old")
	}
	var err error
	LogFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}

	var graylog io.Writer
	if viper.GetBool("graylog.enabled") {
		w, err := logging.NewGraylogWriter(viper.GetString("graylog.address"), AppName)
		if err != nil {
			Logger.Warn("Graylog unavailable", "error", err)
		} else {
			graylog = w
		}
	}

	otelCfg := config.GetOTelConfig()
	OTelProvider, err = intOtel.New(intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ServiceVersion: CurrentEngineVersion,
		BatchTimeout:   otelCfg.BatchTimeout,
		LogWriter:      LogFile,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	})
	if err != nil {
		Logger.Warn("Failed to initialize OTel, continuing without it", "error", err)
	}
	var provider *sdklog.LoggerProvider
	if OTelProvider != nil {
		provider = OTelProvider.LoggerProvider()
	}

	level := viper.GetString("logLevel")
	SlogManager.SetupWith(logging.Options{
		File:     io.MultiWriter(os.Stdout, LogFile),
		Level:    level,
		Provider: provider,
		Graylog:  graylog,
		Context:  MissionContext.Attrs,
	})
	Logger = SlogManager.Logger()
	slog.SetDefault(Logger)

	Zerolog = logging.NewZerolog(logging.ZerologOptions{
		File:    LogFile,
		Level:   level,
		Graylog: graylog,
		Hook:    MissionContext.Hook,
	})

	Logger.Info("SkyHussars engine starting",
		"version", CurrentEngineVersion,
		"buildDate", BuildDate,
		"logFile", logFilePath,
		"gomaxprocs", runtime.GOMAXPROCS(0))
	return nil
}

// shutdownLogging flushes OTel and closes the log file.
func shutdownLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("OTel shutdown failed", "error", err)
		}
	}
	if LogFile != nil {
		_ = LogFile.Close()
	}
}

// loadCatalog returns the built-in planes plus any from catalog.path. A
// relative path is looked up in the assets directory next to the config.
func loadCatalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	path := viper.GetString("catalog.path")
	if path == "" {
		return cat, nil
	}
	if !filepath.IsAbs(path) {
		base := configDir
		if assets, err := config.ResolveAssetDir(configDir); err == nil {
			base = assets
		}
		path = filepath.Join(base, path)
	}
	if err := cat.Load(path); err != nil {
		return nil, err
	}
	Logger.Info("Plane catalog loaded", "path", path, "planes", len(cat.Names()))
	return cat, nil
}

func listPlanes() error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	for _, name := range cat.Names() {
		d, err := cat.Get(name)
		if err != nil {
			return err
		}
		var thrust float64
		for _, e := range d.Engines {
			thrust += e.MaxThrust
		}
		guns := 0
		for _, g := range d.GunGroups {
			guns += g.Guns
		}
		fmt.Printf("%-12s mass=%.0fkg thrust=%.0fN airfoils=%d guns=%d\n",
			d.Name, d.MassGross, thrust, len(d.Airfoils), guns)
	}
	return nil
}

func main() {
	flag.StringVar(&configDir, "config", ".", "directory containing "+config.ConfigFileName)
	flag.Usage = usage
	flag.Parse()

	if err := setup(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	command := "run"
	if flag.NArg() > 0 {
		command = strings.ToLower(flag.Arg(0))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var err error
	switch command {
	case "run":
		err = run(ctx)
	case "planes":
		err = listPlanes()
	case "migratebackups":
		err = migrateBackups()
	default:
		usage()
		err = fmt.Errorf("unknown command %q", command)
	}
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		Logger.Error("Command failed", "command", command, "error", err)
		shutdownLogging()
		os.Exit(1)
	}
	Logger.Info("Done", "command", command)
	shutdownLogging()
}
