// pkg/core/recording.go
package core

import "time"

// Position3D is a longitude/latitude/altitude triple, or X/Y/Z once projected.
type Position3D struct {
	X float64
	Y float64
	Z float64
}

// Recording describes one imported ACMI recording, built from its global properties.
type Recording struct {
	ID                 uint
	SourceFile         string
	FileVersion        string
	Title              string
	Category           string
	Author             string
	DataSource         string
	DataRecorder       string
	Briefing           string
	Debriefing         string
	Comments           string
	ReferenceTime      time.Time
	RecordingTime      time.Time
	ReferenceLongitude float64
	ReferenceLatitude  float64
	ImportedAt         time.Time
	// Duration is the offset of the last frame, in seconds.
	Duration float64
	// Extra holds global properties outside the known vocabulary.
	Extra map[string]string
}
