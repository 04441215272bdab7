// Package gormstorage implements the storage.Backend interface on top of GORM,
// for both PostgreSQL and SQLite. Objects are inserted synchronously so their
// row ids can be cached; states and events are queued and written in batches
// by a background goroutine.
package gormstorage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OCAP2/acmi/internal/cache"
	"github.com/OCAP2/acmi/internal/database"
	"github.com/OCAP2/acmi/internal/model"
	"github.com/OCAP2/acmi/internal/model/convert"
	"github.com/OCAP2/acmi/internal/queue"
	"github.com/OCAP2/acmi/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoRecording is returned when data arrives before StartRecording.
var ErrNoRecording = errors.New("no recording started")

const (
	defaultBatchSize     = 2000
	defaultFlushInterval = 2 * time.Second
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	Manager       *database.Manager
	ObjectCache   *cache.ObjectCache
	Logger        *slog.Logger
	BatchSize     int
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps   Dependencies
	states *queue.Queue[model.ObjectState]
	events *queue.Queue[model.Event]

	recording   *core.Recording
	recordingID atomic.Uint64

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.ObjectCache == nil {
		deps.ObjectCache = cache.NewObjectCache()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = defaultBatchSize
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		states: queue.New[model.ObjectState](),
		events: queue.New[model.Event](),
	}
}

func (b *Backend) db() *gorm.DB {
	return b.deps.Manager.DB
}

// Init migrates the schema and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if err := b.deps.Manager.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writer()
	return nil
}

// Close stops the writer, flushes what is still queued and closes the database.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	flushErr := b.Flush()
	return errors.Join(flushErr, b.deps.Manager.Close())
}

// StartRecording inserts the recording row and resets the object cache.
func (b *Backend) StartRecording(rec *core.Recording) error {
	if err := b.Flush(); err != nil {
		return err
	}

	row := convert.CoreToRecording(*rec)
	row.ID = 0
	if err := b.db().Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new recording: %w", err)
	}

	rec.ID = row.ID
	b.recording = rec
	b.recordingID.Store(uint64(row.ID))
	b.deps.ObjectCache.Reset()

	b.deps.Logger.Info("Recording started", "recordingId", row.ID, "title", rec.Title)
	return nil
}

// EndRecording flushes the queues and stores the final duration.
func (b *Backend) EndRecording() error {
	if b.recording == nil {
		return nil
	}
	if err := b.Flush(); err != nil {
		return err
	}

	err := b.db().Model(&model.Recording{}).
		Where("id = ?", b.recording.ID).
		Update("duration", b.recording.Duration).Error
	if err != nil {
		return fmt.Errorf("failed to update recording duration: %w", err)
	}

	b.deps.Logger.Info("Recording ended", "recordingId", b.recording.ID, "duration", b.recording.Duration)
	b.recording = nil
	b.recordingID.Store(0)
	return nil
}

// AddObject inserts an object synchronously (not queued) because objects are
// low-volume and their row id is needed to link state rows.
func (b *Backend) AddObject(o *core.Object) error {
	recordingID := uint(b.recordingID.Load())
	if recordingID == 0 {
		return ErrNoRecording
	}

	row := convert.CoreToObject(*o)
	row.RecordingID = recordingID
	if err := b.db().Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert object %x: %w", o.ID, err)
	}
	b.deps.ObjectCache.Set(o.ID, row.ID)
	return nil
}

// RecordObjectState converts and queues an object state. States of unknown
// objects are dropped.
func (b *Backend) RecordObjectState(s *core.ObjectState) error {
	rowID, ok := b.deps.ObjectCache.Get(s.ObjectID)
	if !ok {
		return nil
	}

	row := convert.CoreToObjectState(*s)
	row.ObjectRowID = rowID
	b.states.Push(row)

	if b.states.Len() >= b.deps.BatchSize {
		return b.Flush()
	}
	return nil
}

// RemoveObject stores the removal offset and forgets the object.
func (b *Backend) RemoveObject(r *core.Removal) error {
	rowID, ok := b.deps.ObjectCache.Get(r.ObjectID)
	if !ok {
		return nil
	}
	b.deps.ObjectCache.Delete(r.ObjectID)

	err := b.db().Model(&model.Object{}).
		Where("id = ?", rowID).
		Update("removed_at", sql.NullFloat64{Float64: r.Offset, Valid: true}).Error
	if err != nil {
		return fmt.Errorf("failed to mark object %x removed: %w", r.ObjectID, err)
	}
	return nil
}

// RecordEvent converts and queues an event.
func (b *Backend) RecordEvent(e *core.Event) error {
	b.events.Push(convert.CoreToEvent(*e))
	return nil
}

// Flush writes everything queued so far.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	recordingID := uint(b.recordingID.Load())

	stampStates := func(items []model.ObjectState) {
		for i := range items {
			items[i].RecordingID = recordingID
		}
	}
	stampEvents := func(items []model.Event) {
		for i := range items {
			items[i].RecordingID = recordingID
		}
	}

	return errors.Join(
		writeQueue(b.db(), b.states, b.deps.BatchSize, stampStates),
		writeQueue(b.db(), b.events, b.deps.BatchSize, stampEvents),
	)
}

// writeQueue writes all items from a queue to the database, one transaction
// per batch. A failed batch is pushed back so a later flush can retry it.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], batchSize int, prepare func([]T)) error {
	for !q.Empty() {
		items := q.Take(batchSize)
		if prepare != nil {
			prepare(items)
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Omit(clause.Associations).Create(&items).Error
		})
		if err != nil {
			q.Push(items...)
			return fmt.Errorf("error writing %d rows: %w", len(items), err)
		}
	}
	return nil
}

// writer periodically drains the queues into the DB.
func (b *Backend) writer() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Flush(); err != nil {
				b.deps.Logger.Error("Error flushing queues", "error", err)
				continue
			}
			b.deps.Logger.Debug("Flushed queues", "duration", time.Since(start))
		}
	}
}
