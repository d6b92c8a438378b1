package core

import (
	"time"

	"github.com/google/uuid"
)

// FiredEvent is one round leaving a gun.
type FiredEvent struct {
	AircraftID   uuid.UUID
	ProjectileID uuid.UUID
	Time         time.Time
	Frame        Frame
	Position     Position3D
	Velocity     Position3D
}

// Projectile end reasons.
const (
	ProjectileExpired = "expired"
	ProjectileHit     = "hit"
	ProjectileCleared = "cleared"
)

// ProjectileEvent is the full life of one round, recorded when it is removed.
type ProjectileEvent struct {
	ProjectileID uuid.UUID
	AircraftID   uuid.UUID
	Time         time.Time
	SpawnFrame   Frame
	EndFrame     Frame
	Start        Position3D
	End          Position3D
	Velocity     Position3D
	Reason       string
	Hits         int
	// FlightTime in seconds.
	FlightTime float32
}

// HitEvent is one collision check that found rounds inside an aircraft.
type HitEvent struct {
	Time      time.Time
	Frame     Frame
	VictimID  uuid.UUID
	ShooterID uuid.UUID
	Rounds    int
	Position  Position3D
	Distance  float32
}

// ShotDownEvent is an aircraft's shot-down transition.
type ShotDownEvent struct {
	Time     time.Time
	Frame    Frame
	VictimID uuid.UUID
	KillerID uuid.UUID
	Position Position3D
}

// CrashEvent is an aircraft touching the ground.
type CrashEvent struct {
	Time       time.Time
	Frame      Frame
	AircraftID uuid.UUID
	Position   Position3D
	SpeedKmH   float32
}

// SimPerformance is a periodic health sample of the simulation.
type SimPerformance struct {
	Time             time.Time
	Frame            Frame
	TickRate         int
	Overruns         uint64
	LastTickDuration time.Duration
	LiveProjectiles  int
	Aircraft         int
	AircraftFlying   int
	Paused           bool
	Ended            bool
}
