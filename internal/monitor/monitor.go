// Package monitor periodically samples simulation health, writes it to a
// status file and forwards it to the performance sinks.
package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/skyhussars/engine/internal/influx"
	"github.com/skyhussars/engine/internal/logging"
	"github.com/skyhussars/engine/internal/mission"
	"github.com/skyhussars/engine/pkg/core"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager     *logging.SlogManager
	MissionContext *mission.Context
	// Sample returns the current simulation health.
	Sample func() core.SimPerformance
	// Record forwards a sample to storage, usually through the dispatcher.
	Record     func(*core.SimPerformance) error
	Influx     *influx.Manager
	StatusFile string
	Interval   time.Duration
}

// Status is the JSON document written to the status file.
type Status struct {
	Mission     string              `json:"mission"`
	MissionID   string              `json:"missionId"`
	Performance core.SimPerformance `json:"performance"`
	LastTickMs  float64             `json:"lastTickMs"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 10 * time.Second
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.MissionContext == nil {
		deps.MissionContext = mission.NewContext()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus samples the simulation and builds the status document.
func (s *Service) GetProgramStatus() Status {
	perf := s.deps.Sample()
	m := s.deps.MissionContext.GetMission()
	return Status{
		Mission:     m.Name,
		MissionID:   m.ID.String(),
		Performance: perf,
		LastTickMs:  float64(perf.LastTickDuration.Microseconds()) / 1000,
	}
}

// Poll takes one sample and pushes it to every configured sink.
func (s *Service) Poll() error {
	status := s.GetProgramStatus()
	perf := status.Performance
	var errs []error

	if s.deps.StatusFile != "" {
		if err := writeStatusFile(s.deps.StatusFile, status); err != nil {
			errs = append(errs, err)
		}
	}

	if s.deps.Record != nil {
		if err := s.deps.Record(&perf); err != nil {
			errs = append(errs, fmt.Errorf("recording performance: %w", err))
		}
	}

	if s.deps.Influx != nil {
		if err := s.deps.Influx.WritePoint(influx.BucketPerformance, influx.PerformancePoint(status.Mission, perf)); err != nil {
			errs = append(errs, fmt.Errorf("writing performance point: %w", err))
		}
	}

	return errors.Join(errs...)
}

// writeStatusFile replaces the status file atomically.
func writeStatusFile(path string, status Status) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	if s.deps.Sample == nil {
		return errors.New("monitor: no sample source")
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.Poll(); err != nil {
					logger.Error("Status monitor poll failed", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for its goroutine.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
