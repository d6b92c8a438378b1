package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/skyhussars/engine/internal/config"
	"github.com/skyhussars/engine/internal/geo"
	"github.com/skyhussars/engine/pkg/core"
)

var errNoMissionToEnd = errors.New("no mission to end")

// AircraftRecord groups an aircraft with all its time-series data
type AircraftRecord struct {
	Aircraft    core.Aircraft
	States      []core.FlightState
	FiredEvents []core.FiredEvent
}

// Backend stores mission data in memory and exports to JSON
type Backend struct {
	cfg        config.MemoryConfig
	projection *geo.Projection
	mission    *core.Mission
	world      *core.World

	aircraft map[uuid.UUID]*AircraftRecord

	projectileEvents []core.ProjectileEvent
	hitEvents        []core.HitEvent
	shotDownEvents   []core.ShotDownEvent
	crashEvents      []core.CrashEvent
	performance      []core.SimPerformance

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend. projection may be nil, in which case
// the export carries no track geometry.
func New(cfg config.MemoryConfig, projection *geo.Projection) *Backend {
	return &Backend{
		cfg:        cfg,
		projection: projection,
		aircraft:   make(map[uuid.UUID]*AircraftRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMission begins recording a new mission
func (b *Backend) StartMission(mission *core.Mission, world *core.World) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.mission = mission
	b.world = world

	// Reset all collections
	b.aircraft = make(map[uuid.UUID]*AircraftRecord)
	b.projectileEvents = nil
	b.hitEvents = nil
	b.shotDownEvents = nil
	b.crashEvents = nil
	b.performance = nil
	b.lastExportPath = ""

	return nil
}

// EndMission finalizes and exports the mission data
func (b *Backend) EndMission() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return errNoMissionToEnd
	}
	return b.exportJSON()
}

// AddAircraft registers a new aircraft
func (b *Backend) AddAircraft(a *core.Aircraft) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.aircraft[a.ID] = &AircraftRecord{
		Aircraft: *a,
		States:   make([]core.FlightState, 0),
	}
	return nil
}

// GetAircraft looks up an aircraft by id
func (b *Backend) GetAircraft(id uuid.UUID) (*core.Aircraft, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.aircraft[id]; ok {
		return &record.Aircraft, true
	}
	return nil, false
}

// RecordFlightState records an aircraft state sample
func (b *Backend) RecordFlightState(s *core.FlightState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.aircraft[s.AircraftID]; ok {
		record.States = append(record.States, *s)
	}
	return nil // silently ignore if aircraft not found
}

// RecordFiredEvent records a fired event
func (b *Backend) RecordFiredEvent(e *core.FiredEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.aircraft[e.AircraftID]; ok {
		record.FiredEvents = append(record.FiredEvents, *e)
	}
	return nil
}

// RecordProjectileEvent records a removed projectile
func (b *Backend) RecordProjectileEvent(e *core.ProjectileEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projectileEvents = append(b.projectileEvents, *e)
	return nil
}

// RecordHitEvent records a hit event
func (b *Backend) RecordHitEvent(e *core.HitEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hitEvents = append(b.hitEvents, *e)
	return nil
}

// RecordShotDownEvent records a shot-down event
func (b *Backend) RecordShotDownEvent(e *core.ShotDownEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shotDownEvents = append(b.shotDownEvents, *e)
	return nil
}

// RecordCrashEvent records a crash event
func (b *Backend) RecordCrashEvent(e *core.CrashEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.crashEvents = append(b.crashEvents, *e)
	return nil
}

// RecordPerformance records a simulation performance sample
func (b *Backend) RecordPerformance(p *core.SimPerformance) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.performance = append(b.performance, *p)
	return nil
}

// GetExportedFilePath returns the path of the last export, or "".
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the current recording for upload.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.mission == nil {
		return core.UploadMetadata{}
	}

	meta := core.UploadMetadata{
		MissionName: b.mission.Name,
		Tag:         b.mission.Tag,
		Aircraft:    len(b.aircraft),
	}
	if b.world != nil {
		meta.WorldName = b.world.Name
	}
	if b.mission.TickRate > 0 {
		meta.Duration = float64(b.endFrame()) / float64(b.mission.TickRate)
	}
	return meta
}

// endFrame is the highest frame seen in any record. Caller holds mu.
func (b *Backend) endFrame() core.Frame {
	var maxFrame core.Frame
	for _, record := range b.aircraft {
		for _, s := range record.States {
			maxFrame = max(maxFrame, s.Frame)
		}
	}
	for _, e := range b.projectileEvents {
		maxFrame = max(maxFrame, e.EndFrame)
	}
	for _, e := range b.crashEvents {
		maxFrame = max(maxFrame, e.Frame)
	}
	for _, e := range b.shotDownEvents {
		maxFrame = max(maxFrame, e.Frame)
	}
	return maxFrame
}

// sortedAircraft returns records ordered by join frame then name. Caller holds mu.
func (b *Backend) sortedAircraft() []*AircraftRecord {
	records := make([]*AircraftRecord, 0, len(b.aircraft))
	for _, r := range b.aircraft {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Aircraft.JoinFrame != records[j].Aircraft.JoinFrame {
			return records[i].Aircraft.JoinFrame < records[j].Aircraft.JoinFrame
		}
		return records[i].Aircraft.Name < records[j].Aircraft.Name
	})
	return records
}
