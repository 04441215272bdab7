// internal/storage/storage.go
package storage

import "github.com/OCAP2/acmi/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Recording management. The recording passed to StartRecording stays
	// owned by the caller, which may update it (Duration) before EndRecording.
	StartRecording(rec *core.Recording) error
	EndRecording() error

	// Objects
	AddObject(o *core.Object) error
	RecordObjectState(s *core.ObjectState) error
	RemoveObject(r *core.Removal) error

	// Events
	RecordEvent(e *core.Event) error
}

// Exporter is an optional interface for storage backends that produce a
// file per recording.
type Exporter interface {
	ExportedFilePath() string
}
