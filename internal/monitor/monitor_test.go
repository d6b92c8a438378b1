package monitor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhussars/engine/internal/mission"
	"github.com/skyhussars/engine/pkg/core"
)

func sample() core.SimPerformance {
	return core.SimPerformance{
		Frame:            300,
		TickRate:         30,
		LastTickDuration: 1500 * time.Microsecond,
		Aircraft:         3,
		AircraftFlying:   2,
		LiveProjectiles:  12,
	}
}

func TestPoll_WritesStatusFileAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	mc := mission.NewContext()
	id := uuid.New()
	mc.SetMission(&core.Mission{ID: id, Name: "Dogfight"}, &core.World{Name: "Pannonia"})

	var recorded []core.SimPerformance
	s := NewService(Dependencies{
		MissionContext: mc,
		Sample:         sample,
		Record: func(p *core.SimPerformance) error {
			recorded = append(recorded, *p)
			return nil
		},
		StatusFile: path,
	})

	require.NoError(t, s.Poll())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var status Status
	require.NoError(t, json.Unmarshal(data, &status))
	assert.Equal(t, "Dogfight", status.Mission)
	assert.Equal(t, id.String(), status.MissionID)
	assert.Equal(t, 12, status.Performance.LiveProjectiles)
	assert.InDelta(t, 1.5, status.LastTickMs, 1e-9)

	require.Len(t, recorded, 1)
	assert.Equal(t, core.Frame(300), recorded[0].Frame)
}

func TestPoll_ReportsRecordError(t *testing.T) {
	s := NewService(Dependencies{
		Sample: sample,
		Record: func(*core.SimPerformance) error { return errors.New("queue full") },
	})
	err := s.Poll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
}

func TestStart_RequiresSample(t *testing.T) {
	s := NewService(Dependencies{})
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestStartStop(t *testing.T) {
	var polls atomic.Int32
	s := NewService(Dependencies{
		Sample: sample,
		Record: func(*core.SimPerformance) error {
			polls.Add(1)
			return nil
		},
		Interval: 5 * time.Millisecond,
	})

	require.NoError(t, s.Start())
	require.NoError(t, s.Start()) // already running
	assert.True(t, s.IsRunning())

	require.Eventually(t, func() bool { return polls.Load() >= 2 }, time.Second, time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()

	// restartable
	require.NoError(t, s.Start())
	s.Stop()
}
