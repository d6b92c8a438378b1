package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/internal/config"
	"github.com/skyhussars/engine/internal/model"
)

func TestSqliteSetupAndDump(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(config.DBConfig{}, zerolog.Nop())

	require.NoError(t, m.ConnectSqlite(filepath.Join(dir, "live.db")))
	t.Cleanup(func() { _ = m.Close() })
	assert.True(t, m.IsValid)
	assert.True(t, m.ShouldSaveLocal)

	require.NoError(t, m.Setup())
	for _, table := range model.DatabaseModels {
		assert.True(t, m.DB.Migrator().HasTable(table), "%T", table)
	}

	m.SqliteFilePath = filepath.Join(dir, "dump.db")
	require.NoError(t, m.DumpMemoryToDisk())
	_, err := os.Stat(m.SqliteFilePath)
	require.NoError(t, err)

	// dumping again replaces the previous file
	require.NoError(t, m.DumpMemoryToDisk())

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "live.db"), filepath.Join(dir, "dump.db")}, paths)
}

func TestDumpWithoutPath(t *testing.T) {
	m := NewManager(config.DBConfig{}, zerolog.Nop())
	assert.Error(t, m.DumpMemoryToDisk())
}

func TestCloseWithoutConnection(t *testing.T) {
	m := NewManager(config.DBConfig{}, zerolog.Nop())
	assert.NoError(t, m.Close())
}
