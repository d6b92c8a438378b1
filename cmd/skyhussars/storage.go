package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/skyhussars/engine/internal/config"
	"github.com/skyhussars/engine/internal/database"
	"github.com/skyhussars/engine/internal/geo"
	"github.com/skyhussars/engine/internal/storage"
	"github.com/skyhussars/engine/internal/storage/gormstore"
	"github.com/skyhussars/engine/internal/storage/memory"
	wsstorage "github.com/skyhussars/engine/internal/storage/websocket"
)

func initStorage(projection geo.Projection) (storage.Backend, error) {
	storageCfg := config.GetStorageConfig()

	backend, err := createStorageBackend(storageCfg, projection)
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return nil, err
	}
	Logger.Info("Storage initialization complete", "type", storageCfg.Type)
	return backend, nil
}

func createStorageBackend(storageCfg config.StorageConfig, projection geo.Projection) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres", "sqlite":
		cfg := gormstore.Config{
			DumpInterval: storageCfg.SQLite.DumpInterval,
			DumpPath:     sqliteDumpPath(storageCfg),
		}
		if storageCfg.Type == "sqlite" {
			cfg.SqlitePath = storageCfg.SQLite.Path
			if cfg.SqlitePath == "" {
				cfg.SqlitePath = cfg.DumpPath
				cfg.DumpPath = ""
			}
		}
		Logger.Info("GORM storage backend initialized", "type", storageCfg.Type)
		return gormstore.New(gormstore.Dependencies{
			DB:         database.NewManager(config.GetDBConfig(), Zerolog),
			Projection: projection,
			LogManager: SlogManager,
		}, cfg), nil

	case "websocket":
		wsURL := httpToWS(viper.GetString("api.serverUrl")) + "/api"
		secret := viper.GetString("api.apiKey")
		Logger.Info("WebSocket storage backend initialized", "url", wsURL)
		return wsstorage.New(wsstorage.Config{
			URL:    wsURL,
			Secret: secret,
		}, Logger), nil

	case "", "memory":
		Logger.Info("Memory storage backend initialized")
		return memory.New(storageCfg.Memory, &projection), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

// sqliteDumpPath is where the in-memory fallback database is vacuumed to.
func sqliteDumpPath(storageCfg config.StorageConfig) string {
	return filepath.Join(
		storageCfg.Memory.OutputDir,
		fmt.Sprintf("%s_%s.db", AppName, SessionStartTime.Format("20060102_150405")),
	)
}

// httpToWS converts an HTTP(S) URL to a WebSocket URL.
func httpToWS(httpURL string) string {
	s := strings.TrimRight(httpURL, "/")
	s = strings.Replace(s, "https://", "wss://", 1)
	s = strings.Replace(s, "http://", "ws://", 1)
	return s
}
