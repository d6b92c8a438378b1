// Package gormstore implements the storage.Backend interface using GORM
// with internal queues and a background DB writer goroutine.
// Postgres is used when reachable; otherwise rows go to SQLite, which is
// periodically dumped to disk via VACUUM INTO.
package gormstore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/skyhussars/engine/internal/database"
	"github.com/skyhussars/engine/internal/geo"
	"github.com/skyhussars/engine/internal/logging"
	"github.com/skyhussars/engine/internal/model"
	"github.com/skyhussars/engine/internal/model/convert"
	"github.com/skyhussars/engine/internal/queue"
	"github.com/skyhussars/engine/internal/storage"
	"github.com/skyhussars/engine/pkg/core"
)

const (
	defaultWriteInterval = 2 * time.Second
	defaultQueueLimit    = 200000
	defaultBatchSize     = 5000
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *database.Manager
	Projection geo.Projection
	LogManager *logging.SlogManager
}

// Config tunes the writer and the SQLite dump.
type Config struct {
	// SqlitePath forces SQLite at this path instead of trying Postgres.
	SqlitePath    string
	DumpPath      string
	DumpInterval  time.Duration
	WriteInterval time.Duration
	QueueLimit    int
	BatchSize     int
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Aircraft         *queue.Queue[model.Aircraft]
	FlightStates     *queue.Queue[model.FlightState]
	FiredEvents      *queue.Queue[model.FiredEvent]
	ProjectileEvents *queue.Queue[model.ProjectileEvent]
	HitEvents        *queue.Queue[model.HitEvent]
	ShotDownEvents   *queue.Queue[model.ShotDownEvent]
	CrashEvents      *queue.Queue[model.CrashEvent]
	Performance      *queue.Queue[model.SimPerformance]
}

func newQueues(limit int) *queues {
	return &queues{
		Aircraft:         queue.New[model.Aircraft](),
		FlightStates:     queue.NewBounded[model.FlightState](limit),
		FiredEvents:      queue.NewBounded[model.FiredEvent](limit),
		ProjectileEvents: queue.NewBounded[model.ProjectileEvent](limit),
		HitEvents:        queue.NewBounded[model.HitEvent](limit),
		ShotDownEvents:   queue.New[model.ShotDownEvent](),
		CrashEvents:      queue.New[model.CrashEvent](),
		Performance:      queue.NewBounded[model.SimPerformance](limit),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps   Dependencies
	cfg    Config
	queues *queues

	missionID         atomic.Uint64
	lastWriteDuration atomic.Int64

	stopChan chan struct{}
	writers  sync.WaitGroup
	writeMu  sync.Mutex
	closed   bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies, cfg Config) *Backend {
	if cfg.WriteInterval <= 0 {
		cfg.WriteInterval = defaultWriteInterval
	}
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = defaultQueueLimit
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{
		deps:   deps,
		cfg:    cfg,
		queues: newQueues(cfg.QueueLimit),
	}
}

// Init connects, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("no database manager")
	}

	if b.deps.DB.DB == nil {
		var err error
		if b.cfg.SqlitePath != "" {
			err = b.deps.DB.ConnectSqlite(b.cfg.SqlitePath)
		} else {
			err = b.deps.DB.Connect()
		}
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
	}
	if b.deps.DB.ShouldSaveLocal && b.cfg.DumpPath != "" {
		b.deps.DB.SqliteFilePath = b.cfg.DumpPath
	}

	if err := b.deps.DB.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.startDBWriters()
	if b.deps.DB.ShouldSaveLocal && b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.writers.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// Close stops the writers, flushes what is queued and closes the connection.
func (b *Backend) Close() error {
	b.writeMu.Lock()
	if b.closed || b.stopChan == nil {
		b.writeMu.Unlock()
		return nil
	}
	b.closed = true
	close(b.stopChan)
	b.writeMu.Unlock()

	b.writers.Wait()
	b.flush()

	if b.deps.DB.SqliteFilePath != "" {
		if err := b.deps.DB.DumpMemoryToDisk(); err != nil {
			b.deps.LogManager.WriteLog("gormstore:Close", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
		}
	}
	return b.deps.DB.Close()
}

// StartMission performs world get-or-insert and mission create in the DB.
func (b *Backend) StartMission(coreMission *core.Mission, coreWorld *core.World) error {
	db := b.db()
	if db == nil {
		return errors.New("database not initialized")
	}

	conv := convert.Converter{Projection: b.deps.Projection}

	gormWorld := conv.CoreToWorld(*coreWorld)
	if _, err := gormWorld.GetOrInsert(db); err != nil {
		return fmt.Errorf("failed to get or insert world: %w", err)
	}

	gormMission := conv.CoreToMission(*coreMission, gormWorld.ID)
	if err := db.Create(&gormMission).Error; err != nil {
		return fmt.Errorf("failed to insert new mission: %w", err)
	}

	coreWorld.ID = gormWorld.ID
	b.missionID.Store(uint64(gormMission.ID))

	b.deps.LogManager.WriteLog("gormstore:StartMission", fmt.Sprintf("Mission %s recording as id %d", coreMission.Name, gormMission.ID), "INFO")
	return nil
}

// EndMission writes everything queued so far.
func (b *Backend) EndMission() error {
	if b.MissionID() == 0 {
		return storage.ErrNoMission
	}
	b.flush()
	return nil
}

// MissionID returns the DB id of the mission being recorded, 0 before StartMission.
func (b *Backend) MissionID() uint {
	return uint(b.missionID.Load())
}

func (b *Backend) converter() convert.Converter {
	return convert.Converter{MissionID: b.MissionID(), Projection: b.deps.Projection}
}

// AddAircraft converts and queues an aircraft.
func (b *Backend) AddAircraft(a *core.Aircraft) error {
	b.queues.Aircraft.Push(b.converter().CoreToAircraft(*a))
	return nil
}

// RecordFlightState converts and queues a flight state.
func (b *Backend) RecordFlightState(s *core.FlightState) error {
	b.queues.FlightStates.Push(b.converter().CoreToFlightState(*s))
	return nil
}

// RecordFiredEvent converts and queues a fired event.
func (b *Backend) RecordFiredEvent(e *core.FiredEvent) error {
	b.queues.FiredEvents.Push(b.converter().CoreToFiredEvent(*e))
	return nil
}

// RecordProjectileEvent converts and queues a projectile event.
func (b *Backend) RecordProjectileEvent(e *core.ProjectileEvent) error {
	b.queues.ProjectileEvents.Push(b.converter().CoreToProjectileEvent(*e))
	return nil
}

// RecordHitEvent converts and queues a hit event.
func (b *Backend) RecordHitEvent(e *core.HitEvent) error {
	b.queues.HitEvents.Push(b.converter().CoreToHitEvent(*e))
	return nil
}

// RecordShotDownEvent converts and queues a shot-down event.
func (b *Backend) RecordShotDownEvent(e *core.ShotDownEvent) error {
	b.queues.ShotDownEvents.Push(b.converter().CoreToShotDownEvent(*e))
	return nil
}

// RecordCrashEvent converts and queues a crash event.
func (b *Backend) RecordCrashEvent(e *core.CrashEvent) error {
	b.queues.CrashEvents.Push(b.converter().CoreToCrashEvent(*e))
	return nil
}

// RecordPerformance converts and queues a performance sample, stamped with
// the current write queue lengths.
func (b *Backend) RecordPerformance(p *core.SimPerformance) error {
	row := b.converter().CoreToSimPerformance(*p)
	row.WriteQueueLengths = b.QueueLengths()
	row.LastWriteDurationMs = float32(b.LastWriteDuration().Microseconds()) / 1000
	b.queues.Performance.Push(row)
	return nil
}

// QueueLengths reports how many rows wait per table.
func (b *Backend) QueueLengths() model.WriteQueueLengths {
	return model.WriteQueueLengths{
		FlightStates:     uint32(b.queues.FlightStates.Len()),
		FiredEvents:      uint32(b.queues.FiredEvents.Len()),
		ProjectileEvents: uint32(b.queues.ProjectileEvents.Len()),
		HitEvents:        uint32(b.queues.HitEvents.Len()),
		ShotDownEvents:   uint32(b.queues.ShotDownEvents.Len()),
		CrashEvents:      uint32(b.queues.CrashEvents.Len()),
	}
}

// LastWriteDuration is how long the last full writer pass took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWriteDuration.Load())
}

func (b *Backend) db() *gorm.DB {
	if b.deps.DB == nil || !b.deps.DB.IsValid {
		return nil
	}
	return b.deps.DB.DB
}

// writeQueue writes up to batch items from a queue in a transaction.
// Failed batches go back to the front of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, batch int, log func(string, string, string), prepare func([]T)) {
	if q.Empty() {
		return
	}

	items := q.TakeBatch(batch)
	if prepare != nil {
		prepare(items)
	}

	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Requeue(items...)
		return
	}
	if err := tx.Commit().Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error committing %s: %v", name, err), "ERROR")
		q.Requeue(items...)
	}
}

func stamp[T any](missionID uint, set func(*T, uint)) func([]T) {
	return func(items []T) {
		for i := range items {
			set(&items[i], missionID)
		}
	}
}

// writeAll runs one writer pass over every queue. Rows queued before
// StartMission wait until the mission id is known.
func (b *Backend) writeAll() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	db := b.db()
	missionID := b.MissionID()
	if db == nil || missionID == 0 {
		return
	}

	start := time.Now()
	log := b.deps.LogManager.WriteLog
	n := b.cfg.BatchSize

	writeQueue(db, b.queues.Aircraft, "aircraft", n, log, stamp(missionID, func(r *model.Aircraft, id uint) { r.MissionID = id }))
	writeQueue(db, b.queues.FlightStates, "flight states", n, log, stamp(missionID, func(r *model.FlightState, id uint) { r.MissionID = id }))
	writeQueue(db, b.queues.FiredEvents, "fired events", n, log, stamp(missionID, func(r *model.FiredEvent, id uint) { r.MissionID = id }))
	writeQueue(db, b.queues.ProjectileEvents, "projectile events", n, log, stamp(missionID, func(r *model.ProjectileEvent, id uint) { r.MissionID = id }))
	writeQueue(db, b.queues.HitEvents, "hit events", n, log, stamp(missionID, func(r *model.HitEvent, id uint) { r.MissionID = id }))
	writeQueue(db, b.queues.ShotDownEvents, "shot down events", n, log, stamp(missionID, func(r *model.ShotDownEvent, id uint) { r.MissionID = id }))
	writeQueue(db, b.queues.CrashEvents, "crash events", n, log, stamp(missionID, func(r *model.CrashEvent, id uint) { r.MissionID = id }))
	writeQueue(db, b.queues.Performance, "performance", n, log, stamp(missionID, func(r *model.SimPerformance, id uint) { r.MissionID = id }))

	b.lastWriteDuration.Store(int64(time.Since(start)))
}

// flush repeats writer passes until the queues are empty or stop shrinking.
func (b *Backend) flush() {
	prev := -1
	for {
		pending := b.pending()
		if pending == 0 || pending == prev {
			return
		}
		prev = pending
		b.writeAll()
	}
}

func (b *Backend) pending() int {
	return b.queues.Aircraft.Len() +
		b.queues.FlightStates.Len() +
		b.queues.FiredEvents.Len() +
		b.queues.ProjectileEvents.Len() +
		b.queues.HitEvents.Len() +
		b.queues.ShotDownEvents.Len() +
		b.queues.CrashEvents.Len() +
		b.queues.Performance.Len()
}

// startDBWriters starts the background goroutine that periodically drains queues into the DB.
func (b *Backend) startDBWriters() {
	b.writers.Add(1)
	go func() {
		defer b.writers.Done()
		ticker := time.NewTicker(b.cfg.WriteInterval)
		defer ticker.Stop()

		for {
			select {
			case <-b.stopChan:
				return
			case <-ticker.C:
				b.writeAll()
			}
		}
	}()
}

// dumpLoop periodically dumps the SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.writers.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.deps.DB.DumpMemoryToDisk(); err != nil {
				b.deps.LogManager.WriteLog("gormstore:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.deps.LogManager.WriteLog("gormstore:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
