package storage

import (
	"errors"

	"github.com/skyhussars/engine/pkg/core"
)

// ErrNoMission is returned when recording before StartMission.
var ErrNoMission = errors.New("no mission started")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Mission management
	StartMission(mission *core.Mission, world *core.World) error
	EndMission() error

	// Aircraft registration
	AddAircraft(a *core.Aircraft) error

	// State recording
	RecordFlightState(s *core.FlightState) error

	// Event recording
	RecordFiredEvent(e *core.FiredEvent) error
	RecordProjectileEvent(e *core.ProjectileEvent) error
	RecordHitEvent(e *core.HitEvent) error
	RecordShotDownEvent(e *core.ShotDownEvent) error
	RecordCrashEvent(e *core.CrashEvent) error
	RecordPerformance(p *core.SimPerformance) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the debrief server.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
