package core

import (
	"time"

	"github.com/google/uuid"
)

// World is the terrain a mission is flown over.
type World struct {
	ID              uint
	Name            string
	Terrain         string
	OriginLatitude  float64
	OriginLongitude float64
}

// Mission is one recorded flight session.
type Mission struct {
	ID            uuid.UUID
	Name          string
	Author        string
	StartTime     time.Time
	TickRate      int
	EngineVersion string
	Tag           string
}

// Aircraft is a plane taking part in a mission.
type Aircraft struct {
	ID        uuid.UUID
	Name      string
	Type      string
	Faction   string
	Player    bool
	JoinTime  time.Time
	JoinFrame Frame
}

// FlightState is a sampled aircraft state.
type FlightState struct {
	AircraftID uuid.UUID
	Time       time.Time
	Frame      Frame
	Position   Position3D
	Geo        GeoPoint
	Velocity   Position3D
	Heading    float32
	Roll       float32
	SpeedKmH   float32
	Throttle   float32
	Aileron    float32
	Elevator   float32
	Rudder     float32
	Firing     bool
	Crashed    bool
	ShotDown   bool
}
