package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&World{},
	&Mission{},
	&Aircraft{},
	&FlightState{},
	&FiredEvent{},
	&ProjectileEvent{},
	&HitEvent{},
	&ShotDownEvent{},
	&CrashEvent{},
	&SimPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// SimPerformance is the model for periodic simulation health samples
type SimPerformance struct {
	ID                  uint              `json:"id" gorm:"primarykey;autoIncrement;"`
	Time                time.Time         `json:"time" gorm:"index:idx_simperformance_time"`
	MissionID           uint              `json:"missionId" gorm:"index:idx_simperformance_mission_id"`
	Mission             Mission           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	CaptureFrame        uint              `json:"captureFrame"`
	TickRate            int               `json:"tickRate"`
	Overruns            uint64            `json:"overruns"`
	LastTickMs          float32           `json:"lastTickMs"`
	LiveProjectiles     int               `json:"liveProjectiles"`
	Aircraft            int               `json:"aircraft"`
	AircraftFlying      int               `json:"aircraftFlying"`
	Paused              bool              `json:"paused"`
	Ended               bool              `json:"ended"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
}

func (*SimPerformance) TableName() string {
	return "sim_performances"
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	FlightStates     uint32 `json:"flightStates"`
	FiredEvents      uint32 `json:"firedEvents"`
	ProjectileEvents uint32 `json:"projectileEvents"`
	HitEvents        uint32 `json:"hitEvents"`
	ShotDownEvents   uint32 `json:"shotDownEvents"`
	CrashEvents      uint32 `json:"crashEvents"`
}

////////////////////////
// RECORDING MODELS
////////////////////////

// World is the terrain a mission is flown over
type World struct {
	gorm.Model
	Name      string     `json:"name" gorm:"size:127;uniqueIndex"`
	Terrain   string     `json:"terrain" gorm:"size:32"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Location  geom.Point `json:"location"` // origin as EPSG:3857
	Missions  []Mission
}

func (*World) TableName() string {
	return "worlds"
}

// GetOrInsert loads the world by name, inserting it when missing.
func (w *World) GetOrInsert(db *gorm.DB) (
	created bool,
	err error,
) {
	var existingWorld World
	err = db.Where("name = ?", w.Name).First(&existingWorld).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			err = db.Create(w).Error
			return true, err
		}
		return false, err
	}
	// overwrite with db record if found
	*w = existingWorld
	return false, nil
}

// Mission is one recorded flight session
type Mission struct {
	gorm.Model
	UUID          string    `json:"uuid" gorm:"size:36;uniqueIndex"`
	Name          string    `json:"missionName" gorm:"size:200"`
	Author        string    `json:"author" gorm:"size:200"`
	StartTime     time.Time `json:"missionStart" gorm:"index:idx_mission_start"`
	WorldID       uint
	World         World  `gorm:"foreignkey:WorldID"`
	TickRate      int    `json:"tickRate" gorm:"default:30"`
	EngineVersion string `json:"engineVersion" gorm:"size:64"`
	Tag           string `json:"tag" gorm:"size:127"`
}

func (*Mission) TableName() string {
	return "missions"
}

// Aircraft is a plane taking part in a mission
// ObjectID is the aircraft UUID, unique per mission
type Aircraft struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	MissionID uint      `json:"missionId" gorm:"uniqueIndex:idx_aircraft_mission_object"`
	Mission   Mission   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	ObjectID  string    `json:"objectId" gorm:"size:36;uniqueIndex:idx_aircraft_mission_object"`
	JoinTime  time.Time `json:"joinTime"`
	JoinFrame uint      `json:"joinFrame"`
	Name      string    `json:"name" gorm:"size:64"`
	Type      string    `json:"type" gorm:"size:64"`
	Faction   string    `json:"faction" gorm:"size:32"`
	IsPlayer  bool      `json:"isPlayer"`
}

func (*Aircraft) TableName() string {
	return "aircraft"
}

// FlightState is a sampled aircraft state
type FlightState struct {
	ID               uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time             time.Time      `json:"time"`
	MissionID        uint           `json:"missionId" gorm:"index:idx_flightstate_mission_id"`
	Mission          Mission        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	AircraftObjectID string         `json:"aircraftObjectId" gorm:"size:36;index:idx_flightstate_aircraft"`
	CaptureFrame     uint           `json:"captureFrame" gorm:"index:idx_flightstate_capture_frame"`
	Position         geom.Point     `json:"position"` // EPSG:3857
	ElevationASL     float32        `json:"elevationASL"`
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	Heading          float32        `json:"heading"`
	Roll             float32        `json:"roll"`
	SpeedKmH         float32        `json:"speedKmH"`
	Controls         datatypes.JSON `json:"controls"` // {"throttle","aileron","elevator","rudder"}
	Firing           bool           `json:"firing"`
	Crashed          bool           `json:"crashed"`
	ShotDown         bool           `json:"shotDown"`
}

func (*FlightState) TableName() string {
	return "flight_states"
}

// FiredEvent is one round leaving a gun
type FiredEvent struct {
	ID               uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time             time.Time  `json:"time"`
	MissionID        uint       `json:"missionId" gorm:"index:idx_firedevent_mission_id"`
	Mission          Mission    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	AircraftObjectID string     `json:"aircraftObjectId" gorm:"size:36;index:idx_firedevent_aircraft"`
	ProjectileID     string     `json:"projectileId" gorm:"size:36"`
	CaptureFrame     uint       `json:"captureFrame" gorm:"index:idx_firedevent_capture_frame"`
	StartPosition    geom.Point `json:"startPos"`
	StartElevation   float32    `json:"startElev"`
	Velocity         string     `json:"velocity" gorm:"size:64"` // "vx,vy,vz"
}

func (*FiredEvent) TableName() string {
	return "fired_events"
}

// ProjectileEvent is the full life of one round
type ProjectileEvent struct {
	ID               uint          `json:"id" gorm:"primarykey;autoIncrement;"`
	Time             time.Time     `json:"time"`
	MissionID        uint          `json:"missionId" gorm:"index:idx_projectile_mission_id"`
	Mission          Mission       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	ProjectileID     string        `json:"projectileId" gorm:"size:36"`
	AircraftObjectID string        `json:"aircraftObjectId" gorm:"size:36;index:idx_projectile_aircraft"`
	SpawnFrame       uint          `json:"spawnFrame" gorm:"index:idx_projectile_spawn_frame"`
	EndFrame         uint          `json:"endFrame"`
	Positions        geom.Geometry `json:"-"` // LineString Z from spawn to removal, EPSG:3857
	Velocity         string        `json:"velocity" gorm:"size:64"`
	Reason           string        `json:"reason" gorm:"size:16"`
	Hits             int           `json:"hits"`
	FlightTime       float32       `json:"flightTime"`
}

func (*ProjectileEvent) TableName() string {
	return "projectile_events"
}

// HitEvent is a collision check that found rounds inside an aircraft
type HitEvent struct {
	ID              uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time            time.Time  `json:"time"`
	MissionID       uint       `json:"missionId" gorm:"index:idx_hitevent_mission_id"`
	Mission         Mission    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	CaptureFrame    uint       `json:"captureFrame" gorm:"index:idx_hitevent_capture_frame"`
	VictimObjectID  string     `json:"victimObjectId" gorm:"size:36;index:idx_hitevent_victim"`
	ShooterObjectID string     `json:"shooterObjectId" gorm:"size:36"`
	Rounds          int        `json:"rounds"`
	Position        geom.Point `json:"position"`
	Distance        float32    `json:"distance"`
}

func (*HitEvent) TableName() string {
	return "hit_events"
}

// ShotDownEvent is an aircraft's shot-down transition
type ShotDownEvent struct {
	ID             uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time  `json:"time"`
	MissionID      uint       `json:"missionId" gorm:"index:idx_shotdownevent_mission_id"`
	Mission        Mission    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	CaptureFrame   uint       `json:"captureFrame"`
	VictimObjectID string     `json:"victimObjectId" gorm:"size:36"`
	KillerObjectID string     `json:"killerObjectId" gorm:"size:36"`
	Position       geom.Point `json:"position"`
}

func (*ShotDownEvent) TableName() string {
	return "shot_down_events"
}

// CrashEvent is an aircraft touching the ground
type CrashEvent struct {
	ID               uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time             time.Time  `json:"time"`
	MissionID        uint       `json:"missionId" gorm:"index:idx_crashevent_mission_id"`
	Mission          Mission    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	CaptureFrame     uint       `json:"captureFrame"`
	AircraftObjectID string     `json:"aircraftObjectId" gorm:"size:36"`
	Position         geom.Point `json:"position"`
	SpeedKmH         float32    `json:"speedKmH"`
}

func (*CrashEvent) TableName() string {
	return "crash_events"
}
