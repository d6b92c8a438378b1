package main

import (
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/internal/config"
	"github.com/skyhussars/engine/internal/geo"
	"github.com/skyhussars/engine/internal/logging"
	"github.com/skyhussars/engine/internal/storage/gormstore"
	"github.com/skyhussars/engine/internal/storage/memory"
	wsstorage "github.com/skyhussars/engine/internal/storage/websocket"
)

func init() {
	Logger = slog.New(slog.DiscardHandler)
	SlogManager = logging.NewSlogManager()
	Zerolog = zerolog.Nop()
}

func TestHttpToWS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:5000", "ws://localhost:5000"},
		{"https://debrief.example.com/", "wss://debrief.example.com"},
		{"ws://already", "ws://already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, httpToWS(tt.in), tt.in)
	}
}

func TestSpawnsFromConfig(t *testing.T) {
	spawns := spawnsFromConfig([]config.PlaneSpawn{
		{Type: "p80", Name: "lead", Player: true, Faction: "blue", X: 10, Z: 20, Heading: 90},
		{Type: "p80", Faction: "red", Height: 1500},
	}, 3000)

	require.Len(t, spawns, 2)
	assert.Equal(t, "lead", spawns[0].Name)
	assert.True(t, spawns[0].Player)
	assert.Equal(t, 3000.0, spawns[0].Position.Y(), "default spawn height")
	assert.Equal(t, 10.0, spawns[0].Position.X())
	assert.Equal(t, 20.0, spawns[0].Position.Z())
	assert.Equal(t, 90.0, spawns[0].Heading)

	assert.Equal(t, "p80-2", spawns[1].Name)
	assert.Equal(t, 1500.0, spawns[1].Position.Y())
}

func TestCreateStorageBackend(t *testing.T) {
	projection, err := geo.NewProjection(47.5, 19.04)
	require.NoError(t, err)

	b, err := createStorageBackend(config.StorageConfig{Type: "memory"}, projection)
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = createStorageBackend(config.StorageConfig{Type: ""}, projection)
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	b, err = createStorageBackend(config.StorageConfig{Type: "sqlite"}, projection)
	require.NoError(t, err)
	assert.IsType(t, &gormstore.Backend{}, b)

	b, err = createStorageBackend(config.StorageConfig{Type: "websocket"}, projection)
	require.NoError(t, err)
	assert.IsType(t, &wsstorage.Backend{}, b)

	_, err = createStorageBackend(config.StorageConfig{Type: "mongo"}, projection)
	assert.Error(t, err)
}

func TestSqliteDumpPath(t *testing.T) {
	path := sqliteDumpPath(config.StorageConfig{Memory: config.MemoryConfig{OutputDir: "rec"}})
	assert.Contains(t, path, "rec")
	assert.Contains(t, path, AppName+"_")
	assert.Contains(t, path, ".db")
}
