package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skyhussars/engine/internal/storage"
	"github.com/skyhussars/engine/internal/storage/gormstore"
	"github.com/skyhussars/engine/internal/storage/memory"
	"github.com/skyhussars/engine/internal/storage/websocket"
)

func TestBackendsImplementInterface(t *testing.T) {
	var _ storage.Backend = (*memory.Backend)(nil)
	var _ storage.Backend = (*gormstore.Backend)(nil)
	var _ storage.Backend = (*websocket.Backend)(nil)
	var _ storage.Uploadable = (*memory.Backend)(nil)

	assert.EqualError(t, storage.ErrNoMission, "no mission started")
}
