// Package streaming defines the message protocol for live mission streaming.
package streaming

import (
	"encoding/json"

	"github.com/skyhussars/engine/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartMission    = "start_mission"
	TypeEndMission      = "end_mission"
	TypeAddAircraft     = "add_aircraft"
	TypeFlightState     = "flight_state"
	TypeFiredEvent      = "fired_event"
	TypeProjectileEvent = "projectile_event"
	TypeHitEvent        = "hit_event"
	TypeShotDownEvent   = "shotdown_event"
	TypeCrashEvent      = "crash_event"
	TypePerformance     = "performance"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartMissionPayload carries mission and world data.
type StartMissionPayload struct {
	Mission *core.Mission `json:"mission"`
	World   *core.World   `json:"world"`
}

// Decode unmarshals an envelope payload into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}
