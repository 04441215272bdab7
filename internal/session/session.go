// Package session holds the state of the import in progress so that loggers
// and handlers running on other goroutines can read it.
package session

import (
	"log/slog"
	"sync"

	"github.com/OCAP2/acmi/pkg/core"
)

// Context holds the current recording and read position.
type Context struct {
	mu        sync.RWMutex
	recording *core.Recording
	source    string
	offset    float64
	records   uint64
}

// NewContext creates a Context with no recording loaded.
func NewContext() *Context {
	return &Context{
		recording: &core.Recording{Title: "No recording loaded"},
	}
}

// GetRecording returns the current recording.
func (c *Context) GetRecording() *core.Recording {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.recording
}

// SetRecording starts tracking a new recording read from source and resets
// the read position.
func (c *Context) SetRecording(rec *core.Recording, source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recording = rec
	c.source = source
	c.offset = 0
	c.records = 0
}

// Advance records that one more record was read at the given frame offset.
func (c *Context) Advance(offset float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = offset
	c.records++
}

// Position returns the current frame offset and the number of records read.
func (c *Context) Position() (offset float64, records uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset, c.records
}

// Attrs describes the import for log records. It is empty until a recording
// is set.
func (c *Context) Attrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.source == "" {
		return nil
	}
	return []slog.Attr{
		slog.String("source", c.source),
		slog.Float64("offset", c.offset),
		slog.Uint64("records", c.records),
	}
}
