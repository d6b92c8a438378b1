package sim

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler_RejectsZeroPeriod(t *testing.T) {
	_, err := NewScheduler(0, func() {}, nil)
	require.Error(t, err)
}

func TestScheduler_StartStopIdempotent(t *testing.T) {
	var ticks atomic.Int32
	s, err := NewScheduler(2*time.Millisecond, func() { ticks.Add(1) }, nil)
	require.NoError(t, err)

	assert.False(t, s.Running())
	s.Stop()
	assert.False(t, s.Running())

	s.Start()
	s.Start()
	assert.True(t, s.Running())
	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	s.Stop()
	s.Stop()
	assert.False(t, s.Running())

	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no tick may run after Stop returns")
}

func TestScheduler_Restartable(t *testing.T) {
	var ticks atomic.Int32
	s, err := NewScheduler(2*time.Millisecond, func() { ticks.Add(1) }, nil)
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return ticks.Load() >= 1 }, time.Second, time.Millisecond)
	s.Stop()
	stopped := ticks.Load()

	s.Start()
	require.Eventually(t, func() bool { return ticks.Load() > stopped }, time.Second, time.Millisecond)
	s.Stop()
}

func TestScheduler_StopWaitsForTickInFlight(t *testing.T) {
	var started, finished atomic.Int32
	entered := make(chan struct{}, 1)
	s, err := NewScheduler(time.Millisecond, func() {
		started.Add(1)
		select {
		case entered <- struct{}{}:
		default:
		}
		time.Sleep(20 * time.Millisecond)
		finished.Add(1)
	}, nil)
	require.NoError(t, err)

	s.Start()
	<-entered
	s.Stop()

	assert.Equal(t, started.Load(), finished.Load(), "ticks are atomic-or-not-run")
}

func TestScheduler_CountsOverruns(t *testing.T) {
	s, err := NewScheduler(2*time.Millisecond, func() { time.Sleep(6 * time.Millisecond) }, nil)
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return s.Overruns() >= 2 }, time.Second, time.Millisecond)
	s.Stop()

	assert.GreaterOrEqual(t, s.LastTickDuration(), 6*time.Millisecond)
	assert.False(t, s.Running(), "overruns are never fatal")
}
