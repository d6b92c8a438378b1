package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/skyhussars/engine/internal/cache"
	"github.com/skyhussars/engine/internal/geo"
	"github.com/skyhussars/engine/internal/influx"
	"github.com/skyhussars/engine/internal/logging"
	"github.com/skyhussars/engine/internal/mission"
	"github.com/skyhussars/engine/internal/storage"
	"github.com/skyhussars/engine/pkg/core"
)

// ErrTooEarlyForStateAssociation is returned when state data arrives before the aircraft is registered
var ErrTooEarlyForStateAssociation = errors.New("too early for state association")

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	AircraftCache  *cache.AircraftCache
	LogManager     *logging.SlogManager
	MissionContext *mission.Context
	// Projection fills FlightState.Geo when set.
	Projection *geo.Projection
	// Influx mirrors flight states when set.
	Influx *influx.Manager
}

// Manager turns dispatched simulation events into storage writes.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.AircraftCache == nil {
		deps.AircraftCache = cache.NewAircraftCache()
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.MissionContext == nil {
		deps.MissionContext = mission.NewContext()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// Backend returns the storage backend events are written to.
func (m *Manager) Backend() storage.Backend {
	return m.backend
}

// StartMission resets the aircraft cache and opens the mission in storage.
func (m *Manager) StartMission(mi *core.Mission, w *core.World) error {
	m.deps.AircraftCache.Reset()
	m.deps.MissionContext.SetMission(mi, w)
	if err := m.backend.StartMission(mi, w); err != nil {
		return fmt.Errorf("starting mission %q: %w", mi.Name, err)
	}
	m.deps.LogManager.WriteLog("worker:StartMission", fmt.Sprintf("Recording mission %s on %s", mi.Name, w.Name), "INFO")
	return nil
}

// EndMission closes the mission in storage.
func (m *Manager) EndMission() error {
	return m.backend.EndMission()
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	LastWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.LastWriteDuration()
	}
	return 0
}
