package worker

import (
	"fmt"

	"github.com/skyhussars/engine/internal/dispatcher"
	"github.com/skyhussars/engine/internal/influx"
	"github.com/skyhussars/engine/pkg/core"
)

// Commands emitted by the simulation.
const (
	CmdAircraft    = ":AIRCRAFT:"
	CmdFlightState = ":FLIGHT:STATE:"
	CmdFired       = ":FIRED:"
	CmdProjectile  = ":PROJECTILE:"
	CmdHit         = ":HIT:"
	CmdShotDown    = ":SHOTDOWN:"
	CmdCrash       = ":CRASH:"
	CmdPerf        = ":PERF:"
)

// RegisterHandlers registers all event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Aircraft registration - sync (need to cache before states arrive)
	d.Register(CmdAircraft, m.handleAircraft, dispatcher.Logged())

	// High-volume state updates - buffered
	d.Register(CmdFlightState, m.handleFlightState, dispatcher.Buffered(10000), dispatcher.Logged())

	// Weapons - buffered
	d.Register(CmdFired, m.handleFired, dispatcher.Buffered(10000), dispatcher.Logged())
	d.Register(CmdProjectile, m.handleProjectile, dispatcher.Buffered(5000), dispatcher.Logged())
	d.Register(CmdHit, m.handleHit, dispatcher.Buffered(2000), dispatcher.Logged())

	// Rare, must not be lost - blocking
	d.Register(CmdShotDown, m.handleShotDown, dispatcher.Buffered(500), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(CmdCrash, m.handleCrash, dispatcher.Buffered(500), dispatcher.Blocking(), dispatcher.Logged())

	// Health samples - buffered
	d.Register(CmdPerf, m.handlePerf, dispatcher.Buffered(100), dispatcher.Logged())
}

func payload[T any](e dispatcher.Event) (*T, error) {
	switch p := e.Payload.(type) {
	case *T:
		if p == nil {
			return nil, fmt.Errorf("nil payload for %s", e.Command)
		}
		return p, nil
	case T:
		return &p, nil
	default:
		return nil, fmt.Errorf("unexpected payload %T for %s", e.Payload, e.Command)
	}
}

func (m *Manager) handleAircraft(e dispatcher.Event) (any, error) {
	obj, err := payload[core.Aircraft](e)
	if err != nil {
		return nil, err
	}

	if !m.deps.AircraftCache.Add(*obj) {
		return nil, fmt.Errorf("aircraft %s already registered", obj.ID)
	}
	if err := m.backend.AddAircraft(obj); err != nil {
		return nil, fmt.Errorf("failed to add aircraft: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleFlightState(e dispatcher.Event) (any, error) {
	obj, err := payload[core.FlightState](e)
	if err != nil {
		return nil, err
	}

	if _, ok := m.deps.AircraftCache.Get(obj.AircraftID); !ok {
		return nil, ErrTooEarlyForStateAssociation
	}
	if m.deps.Projection != nil && obj.Geo == (core.GeoPoint{}) {
		obj.Geo = m.deps.Projection.ToGeo(obj.Position)
	}
	m.deps.MissionContext.SetFrame(obj.Frame)

	if err := m.backend.RecordFlightState(obj); err != nil {
		return nil, fmt.Errorf("failed to record flight state: %w", err)
	}

	if m.deps.Influx != nil {
		point := influx.FlightStatePoint(m.deps.MissionContext.GetMission().Name, *obj)
		if err := m.deps.Influx.WritePoint(influx.BucketFlight, point); err != nil {
			return nil, fmt.Errorf("failed to write flight state point: %w", err)
		}
	}
	return nil, nil
}

func (m *Manager) handleFired(e dispatcher.Event) (any, error) {
	obj, err := payload[core.FiredEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordFiredEvent(obj); err != nil {
		return nil, fmt.Errorf("failed to record fired event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleProjectile(e dispatcher.Event) (any, error) {
	obj, err := payload[core.ProjectileEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordProjectileEvent(obj); err != nil {
		return nil, fmt.Errorf("failed to record projectile event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleHit(e dispatcher.Event) (any, error) {
	obj, err := payload[core.HitEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordHitEvent(obj); err != nil {
		return nil, fmt.Errorf("failed to record hit event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleShotDown(e dispatcher.Event) (any, error) {
	obj, err := payload[core.ShotDownEvent](e)
	if err != nil {
		return nil, err
	}

	victim, _ := m.deps.AircraftCache.Get(obj.VictimID)
	killer, _ := m.deps.AircraftCache.Get(obj.KillerID)
	m.deps.LogManager.Logger().Info("Aircraft shot down",
		"victim", victim.Name,
		"killer", killer.Name,
		"frame", obj.Frame,
	)

	if err := m.backend.RecordShotDownEvent(obj); err != nil {
		return nil, fmt.Errorf("failed to record shot down event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleCrash(e dispatcher.Event) (any, error) {
	obj, err := payload[core.CrashEvent](e)
	if err != nil {
		return nil, err
	}

	a, _ := m.deps.AircraftCache.Get(obj.AircraftID)
	m.deps.LogManager.Logger().Info("Aircraft crashed",
		"aircraft", a.Name,
		"speed", obj.SpeedKmH,
		"frame", obj.Frame,
	)

	if err := m.backend.RecordCrashEvent(obj); err != nil {
		return nil, fmt.Errorf("failed to record crash event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handlePerf(e dispatcher.Event) (any, error) {
	obj, err := payload[core.SimPerformance](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordPerformance(obj); err != nil {
		return nil, fmt.Errorf("failed to record performance: %w", err)
	}
	return nil, nil
}
