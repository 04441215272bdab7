// pkg/core/object.go
package core

import "time"

// Object is a tracked entity: aircraft, vehicle, weapon, bullseye and so on.
// ID is the object id used in the recording.
type Object struct {
	ID        uint64
	Name      string
	Type      []string
	CallSign  string
	Pilot     string
	Group     string
	Country   string
	Coalition string
	Color     string
	Parent    uint64
	FirstSeen float64 // frame offset, seconds
	Time      time.Time
}

// ObjectState is the state of an object after an update. Position is only
// meaningful when HasPosition is set; attitude fields are nil until reported.
type ObjectState struct {
	ObjectID    uint64
	Offset      float64
	Time        time.Time
	Position    Position3D // longitude, latitude, altitude (WGS84)
	HasPosition bool
	Roll        *float64
	Pitch       *float64
	Yaw         *float64
	Heading     *float64
	U           *float64
	V           *float64
	// Properties holds the other properties sent with this update, in wire form.
	Properties map[string]string
}

// Removal marks an object leaving the recording.
type Removal struct {
	ObjectID uint64
	Offset   float64
	Time     time.Time
}
