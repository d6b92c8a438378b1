package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"World", &World{}, "worlds"},
		{"Mission", &Mission{}, "missions"},
		{"Aircraft", &Aircraft{}, "aircraft"},
		{"FlightState", &FlightState{}, "flight_states"},
		{"FiredEvent", &FiredEvent{}, "fired_events"},
		{"ProjectileEvent", &ProjectileEvent{}, "projectile_events"},
		{"HitEvent", &HitEvent{}, "hit_events"},
		{"ShotDownEvent", &ShotDownEvent{}, "shot_down_events"},
		{"CrashEvent", &CrashEvent{}, "crash_events"},
		{"SimPerformance", &SimPerformance{}, "sim_performances"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModelsHaveTableNames(t *testing.T) {
	assert.Len(t, DatabaseModels, 10)
	for _, m := range DatabaseModels {
		_, ok := m.(interface{ TableName() string })
		assert.True(t, ok, "%T has no TableName", m)
	}
}
