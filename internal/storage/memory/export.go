package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skyhussars/engine/pkg/core"
)

// ExportVersion identifies the recording layout.
const ExportVersion = "1"

// RecordingExport is the root JSON structure
type RecordingExport struct {
	Version       string         `json:"version"`
	EngineVersion string         `json:"engineVersion"`
	MissionName   string         `json:"missionName"`
	MissionAuthor string         `json:"missionAuthor"`
	WorldName     string         `json:"worldName"`
	Tag           string         `json:"tag"`
	StartTime     time.Time      `json:"startTime"`
	TickRate      int            `json:"tickRate"`
	EndFrame      core.Frame     `json:"endFrame"`
	Aircraft      []AircraftJSON `json:"aircraft"`
	Projectiles   [][]any        `json:"projectiles"`
	Events        [][]any        `json:"events"`
}

// AircraftJSON is one aircraft and its samples
type AircraftJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Faction   string     `json:"faction"`
	IsPlayer  int        `json:"isPlayer"`
	JoinFrame core.Frame `json:"joinFrame"`
	// Positions: [frame, [x, y, z], heading, roll, speedKmH, throttle, status]
	Positions [][]any `json:"positions"`
	// FramesFired: [frame, [x, y, z], [vx, vy, vz]]
	FramesFired [][]any `json:"framesFired"`
	// Track is an EPSG:3857 LINESTRING Z WKT of the sampled positions.
	Track string `json:"track,omitempty"`
}

// status condenses the flight flags for the positions array
func status(s core.FlightState) string {
	switch {
	case s.Crashed:
		return "crashed"
	case s.ShotDown:
		return "shotdown"
	case s.Firing:
		return "firing"
	default:
		return "flying"
	}
}

func vec(p core.Position3D) []float64 {
	return []float64{p.X, p.Y, p.Z}
}

// exportJSON writes the mission data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	// Build filename
	missionName := strings.ReplaceAll(b.mission.Name, " ", "_")
	missionName = strings.ReplaceAll(missionName, ":", "_")
	timestamp := b.mission.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.json.gz", missionName, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.json", missionName, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if b.cfg.CompressOutput {
		if err := b.writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := b.writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() RecordingExport {
	export := RecordingExport{
		Version:       ExportVersion,
		EngineVersion: b.mission.EngineVersion,
		MissionName:   b.mission.Name,
		MissionAuthor: b.mission.Author,
		Tag:           b.mission.Tag,
		StartTime:     b.mission.StartTime,
		TickRate:      b.mission.TickRate,
		EndFrame:      b.endFrame(),
		Aircraft:      make([]AircraftJSON, 0, len(b.aircraft)),
		Projectiles:   make([][]any, 0, len(b.projectileEvents)),
		Events:        make([][]any, 0),
	}
	if b.world != nil {
		export.WorldName = b.world.Name
	}

	for _, record := range b.sortedAircraft() {
		a := record.Aircraft
		entity := AircraftJSON{
			ID:          a.ID.String(),
			Name:        a.Name,
			Type:        a.Type,
			Faction:     a.Faction,
			IsPlayer:    boolToInt(a.Player),
			JoinFrame:   a.JoinFrame,
			Positions:   make([][]any, 0, len(record.States)),
			FramesFired: make([][]any, 0, len(record.FiredEvents)),
		}

		track := make([]core.Position3D, 0, len(record.States))
		for _, s := range record.States {
			entity.Positions = append(entity.Positions, []any{
				s.Frame,
				vec(s.Position),
				s.Heading,
				s.Roll,
				s.SpeedKmH,
				s.Throttle,
				status(s),
			})
			track = append(track, s.Position)
		}
		if b.projection != nil {
			entity.Track = b.projection.TrackWKT(track)
		}

		for _, fired := range record.FiredEvents {
			entity.FramesFired = append(entity.FramesFired, []any{
				fired.Frame,
				vec(fired.Position),
				vec(fired.Velocity),
			})
		}

		export.Aircraft = append(export.Aircraft, entity)
	}

	// Format: [spawnFrame, endFrame, ownerId, [start], [end], reason, hits]
	for _, p := range b.projectileEvents {
		export.Projectiles = append(export.Projectiles, []any{
			p.SpawnFrame,
			p.EndFrame,
			p.AircraftID.String(),
			vec(p.Start),
			vec(p.End),
			p.Reason,
			p.Hits,
		})
	}

	// Format: [frameNum, "hit", victimId, shooterId, rounds, distance]
	for _, evt := range b.hitEvents {
		export.Events = append(export.Events, []any{
			evt.Frame,
			"hit",
			evt.VictimID.String(),
			evt.ShooterID.String(),
			evt.Rounds,
			evt.Distance,
		})
	}

	// Format: [frameNum, "shotdown", victimId, killerId]
	for _, evt := range b.shotDownEvents {
		export.Events = append(export.Events, []any{
			evt.Frame,
			"shotdown",
			evt.VictimID.String(),
			evt.KillerID.String(),
		})
	}

	// Format: [frameNum, "crash", aircraftId, speedKmH]
	for _, evt := range b.crashEvents {
		export.Events = append(export.Events, []any{
			evt.Frame,
			"crash",
			evt.AircraftID.String(),
			evt.SpeedKmH,
		})
	}

	return export
}

func (b *Backend) writeJSON(path string, data RecordingExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func (b *Backend) writeGzipJSON(path string, data RecordingExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
