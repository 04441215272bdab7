// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/pkg/core"
)

// ObjectRecord groups an object with all its time-series data
type ObjectRecord struct {
	Object  core.Object
	States  []core.ObjectState
	Removed *core.Removal
}

// Backend stores a recording in memory and exports it to JSON when it ends
type Backend struct {
	cfg       config.MemoryConfig
	recording *core.Recording

	objects []*ObjectRecord          // in order of appearance
	live    map[uint64]*ObjectRecord // keyed by object id, removed objects excluded
	events  []core.Event

	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:  cfg,
		live: make(map[uint64]*ObjectRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRecording begins a new recording and drops everything kept from the
// previous one
func (b *Backend) StartRecording(rec *core.Recording) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.recording = rec
	b.objects = nil
	b.live = make(map[uint64]*ObjectRecord)
	b.events = nil
	b.idCounter = 0
	b.lastExportPath = ""

	return nil
}

// EndRecording finalizes and exports the recording
func (b *Backend) EndRecording() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.recording == nil {
		return nil
	}
	return b.exportJSON()
}

// ExportedFilePath returns the file written by the last EndRecording
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// AddObject registers a new object. An object id still in use is replaced,
// which closes the previous object's record.
func (b *Backend) AddObject(o *core.Object) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	record := &ObjectRecord{
		Object: *o,
		States: make([]core.ObjectState, 0),
	}
	b.objects = append(b.objects, record)
	b.live[o.ID] = record
	return nil
}

// RecordObjectState records an object state update
func (b *Backend) RecordObjectState(s *core.ObjectState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.live[s.ObjectID]; ok {
		record.States = append(record.States, *s)
	}
	return nil // silently ignore if object not found
}

// RemoveObject marks an object as removed
func (b *Backend) RemoveObject(r *core.Removal) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if record, ok := b.live[r.ObjectID]; ok {
		removal := *r
		record.Removed = &removal
		delete(b.live, r.ObjectID)
	}
	return nil
}

// RecordEvent records an event
func (b *Backend) RecordEvent(e *core.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	e.ID = b.idCounter
	b.events = append(b.events, *e)
	return nil
}
