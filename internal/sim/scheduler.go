package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/skyhussars/engine/internal/sim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type schedulerState int

const (
	stateIdle schedulerState = iota
	stateRunning
)

func (s schedulerState) String() string {
	if s == stateRunning {
		return "running"
	}
	return "idle"
}

// Scheduler calls a tick function at a fixed period on its own goroutine.
// Start and Stop are the only transitions between idle and running; both are
// idempotent. Stop returns after the tick in flight has finished and no tick
// starts after that. A tick that overruns its period delays the next one.
type Scheduler struct {
	period time.Duration
	tick   func()
	logger *slog.Logger

	mu    sync.Mutex
	state schedulerState
	stop  chan struct{}
	done  chan struct{}

	ticks        metric.Int64Counter
	tickDuration metric.Float64Histogram
	overruns     metric.Int64Counter

	overrunCount atomic.Uint64
	lastDuration atomic.Int64
}

// NewScheduler creates an idle scheduler.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewScheduler(period time.Duration, tick func(), logger *slog.Logger) (*Scheduler, error) {
	if period <= 0 {
		return nil, fmt.Errorf("scheduler period must be positive, got %v", period)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		period: period,
		tick:   tick,
		logger: logger,
	}

	m := meter()
	var err error

	s.ticks, err = m.Int64Counter(
		"sim.ticks",
		metric.WithDescription("Total simulation ticks run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	s.tickDuration, err = m.Float64Histogram(
		"sim.tick.duration",
		metric.WithDescription("Wall time of one simulation tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	s.overruns, err = m.Int64Counter(
		"sim.tick.overruns",
		metric.WithDescription("Ticks that took longer than the tick period"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating overrun counter: %w", err)
	}

	return s, nil
}

// Start begins ticking. It does nothing when already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateRunning {
		return
	}
	s.state = stateRunning
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	s.logger.Debug("Scheduler started", "period", s.period)
}

// Stop halts ticking and waits for the tick in flight. It does nothing when idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == stateIdle {
		s.mu.Unlock()
		return
	}
	s.state = stateIdle
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Debug("Scheduler stopped")
}

// Running reports whether the scheduler is ticking.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateRunning
}

// Overruns is the number of ticks that exceeded the period.
func (s *Scheduler) Overruns() uint64 {
	return s.overrunCount.Load()
}

// LastTickDuration is the wall time of the most recent tick.
func (s *Scheduler) LastTickDuration() time.Duration {
	return time.Duration(s.lastDuration.Load())
}

// Period is the tick period.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.runOnce()
	for {
		// stop wins over a pending tick
		select {
		case <-stop:
			return
		default:
		}
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	start := time.Now()
	s.tick()
	elapsed := time.Since(start)
	s.lastDuration.Store(int64(elapsed))

	ctx := context.Background()
	s.ticks.Add(ctx, 1)
	s.tickDuration.Record(ctx, float64(elapsed.Microseconds())/1000)
	if elapsed > s.period {
		s.overrunCount.Add(1)
		s.overruns.Add(ctx, 1)
		s.logger.Debug("Tick overrun", "elapsed", elapsed, "period", s.period)
	}
}
