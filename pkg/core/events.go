// pkg/core/events.go
package core

import "time"

// Event is a recording event such as a message, a landing or a kill.
type Event struct {
	ID        uint
	Offset    float64
	Time      time.Time
	Kind      string
	ObjectIDs []uint64
	Params    []string
	Text      string
}
