// Package convert turns core recording types into GORM rows
package convert

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/skyhussars/engine/internal/geo"
	"github.com/skyhussars/engine/internal/model"
	"github.com/skyhussars/engine/pkg/core"
)

// Converter stamps rows with the mission id and projects positions to EPSG:3857.
type Converter struct {
	MissionID  uint
	Projection geo.Projection
}

// controls is the JSON layout of FlightState.Controls
type controls struct {
	Throttle float32 `json:"throttle"`
	Aileron  float32 `json:"aileron"`
	Elevator float32 `json:"elevator"`
	Rudder   float32 `json:"rudder"`
}

func velocityString(v core.Position3D) string {
	return fmt.Sprintf("%.2f,%.2f,%.2f", v.X, v.Y, v.Z)
}

// point projects pos, storing an empty point when pos is not finite.
func (c Converter) point(pos core.Position3D) geom.Point {
	pt, err := c.Projection.Point(pos)
	if err != nil {
		return geom.Point{}
	}
	return pt
}

// CoreToWorld converts a core.World to a GORM model.World.
func (c Converter) CoreToWorld(w core.World) model.World {
	return model.World{
		Name:      w.Name,
		Terrain:   w.Terrain,
		Latitude:  w.OriginLatitude,
		Longitude: w.OriginLongitude,
		Location:  c.point(core.Position3D{}),
	}
}

// CoreToMission converts a core.Mission to a GORM model.Mission.
func (c Converter) CoreToMission(m core.Mission, worldID uint) model.Mission {
	return model.Mission{
		UUID:          m.ID.String(),
		Name:          m.Name,
		Author:        m.Author,
		StartTime:     m.StartTime,
		WorldID:       worldID,
		TickRate:      m.TickRate,
		EngineVersion: m.EngineVersion,
		Tag:           m.Tag,
	}
}

// CoreToAircraft converts a core.Aircraft to a GORM model.Aircraft.
func (c Converter) CoreToAircraft(a core.Aircraft) model.Aircraft {
	return model.Aircraft{
		MissionID: c.MissionID,
		ObjectID:  a.ID.String(),
		JoinTime:  a.JoinTime,
		JoinFrame: uint(a.JoinFrame),
		Name:      a.Name,
		Type:      a.Type,
		Faction:   a.Faction,
		IsPlayer:  a.Player,
	}
}

// CoreToFlightState converts a core.FlightState to a GORM model.FlightState.
func (c Converter) CoreToFlightState(s core.FlightState) model.FlightState {
	ctl, _ := json.Marshal(controls{
		Throttle: s.Throttle,
		Aileron:  s.Aileron,
		Elevator: s.Elevator,
		Rudder:   s.Rudder,
	})
	return model.FlightState{
		Time:             s.Time,
		MissionID:        c.MissionID,
		AircraftObjectID: s.AircraftID.String(),
		CaptureFrame:     uint(s.Frame),
		Position:         c.point(s.Position),
		ElevationASL:     float32(s.Position.Y),
		Latitude:         s.Geo.Latitude,
		Longitude:        s.Geo.Longitude,
		Heading:          s.Heading,
		Roll:             s.Roll,
		SpeedKmH:         s.SpeedKmH,
		Controls:         datatypes.JSON(ctl),
		Firing:           s.Firing,
		Crashed:          s.Crashed,
		ShotDown:         s.ShotDown,
	}
}

// CoreToFiredEvent converts a core.FiredEvent to a GORM model.FiredEvent.
func (c Converter) CoreToFiredEvent(e core.FiredEvent) model.FiredEvent {
	return model.FiredEvent{
		Time:             e.Time,
		MissionID:        c.MissionID,
		AircraftObjectID: e.AircraftID.String(),
		ProjectileID:     e.ProjectileID.String(),
		CaptureFrame:     uint(e.Frame),
		StartPosition:    c.point(e.Position),
		StartElevation:   float32(e.Position.Y),
		Velocity:         velocityString(e.Velocity),
	}
}

// CoreToProjectileEvent converts a core.ProjectileEvent to a GORM model.ProjectileEvent.
// The stored geometry is the straight LineString Z from spawn to removal.
func (c Converter) CoreToProjectileEvent(e core.ProjectileEvent) model.ProjectileEvent {
	var positions geom.Geometry
	if ls, err := c.Projection.Track([]core.Position3D{e.Start, e.End}); err == nil {
		positions = ls.AsGeometry()
	}
	return model.ProjectileEvent{
		Time:             e.Time,
		MissionID:        c.MissionID,
		ProjectileID:     e.ProjectileID.String(),
		AircraftObjectID: e.AircraftID.String(),
		SpawnFrame:       uint(e.SpawnFrame),
		EndFrame:         uint(e.EndFrame),
		Positions:        positions,
		Velocity:         velocityString(e.Velocity),
		Reason:           e.Reason,
		Hits:             e.Hits,
		FlightTime:       e.FlightTime,
	}
}

// CoreToHitEvent converts a core.HitEvent to a GORM model.HitEvent.
func (c Converter) CoreToHitEvent(e core.HitEvent) model.HitEvent {
	return model.HitEvent{
		Time:            e.Time,
		MissionID:       c.MissionID,
		CaptureFrame:    uint(e.Frame),
		VictimObjectID:  e.VictimID.String(),
		ShooterObjectID: e.ShooterID.String(),
		Rounds:          e.Rounds,
		Position:        c.point(e.Position),
		Distance:        e.Distance,
	}
}

// CoreToShotDownEvent converts a core.ShotDownEvent to a GORM model.ShotDownEvent.
func (c Converter) CoreToShotDownEvent(e core.ShotDownEvent) model.ShotDownEvent {
	return model.ShotDownEvent{
		Time:           e.Time,
		MissionID:      c.MissionID,
		CaptureFrame:   uint(e.Frame),
		VictimObjectID: e.VictimID.String(),
		KillerObjectID: e.KillerID.String(),
		Position:       c.point(e.Position),
	}
}

// CoreToCrashEvent converts a core.CrashEvent to a GORM model.CrashEvent.
func (c Converter) CoreToCrashEvent(e core.CrashEvent) model.CrashEvent {
	return model.CrashEvent{
		Time:             e.Time,
		MissionID:        c.MissionID,
		CaptureFrame:     uint(e.Frame),
		AircraftObjectID: e.AircraftID.String(),
		Position:         c.point(e.Position),
		SpeedKmH:         e.SpeedKmH,
	}
}

// CoreToSimPerformance converts a core.SimPerformance to a GORM model.SimPerformance.
func (c Converter) CoreToSimPerformance(p core.SimPerformance) model.SimPerformance {
	return model.SimPerformance{
		Time:            p.Time,
		MissionID:       c.MissionID,
		CaptureFrame:    uint(p.Frame),
		TickRate:        p.TickRate,
		Overruns:        p.Overruns,
		LastTickMs:      float32(p.LastTickDuration.Microseconds()) / 1000,
		LiveProjectiles: p.LiveProjectiles,
		Aircraft:        p.Aircraft,
		AircraftFlying:  p.AircraftFlying,
		Paused:          p.Paused,
		Ended:           p.Ended,
	}
}
