// Package tracker accumulates ACMI records into the current state of a
// recording: its global properties, the current frame and every live object.
package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/OCAP2/acmi/pkg/acmi"
)

// ErrInvalidReferenceTime is returned when ReferenceTime is not RFC 3339.
var ErrInvalidReferenceTime = errors.New("invalid reference time")

// ChangeKind says what a record did to the tracked state.
type ChangeKind int

const (
	ChangeNone ChangeKind = iota
	ChangeGlobal
	ChangeFrame
	ChangeCreated
	ChangeUpdated
	ChangeRemoved
	ChangeEvent
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeGlobal:
		return "global"
	case ChangeFrame:
		return "frame"
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeEvent:
		return "event"
	default:
		return "none"
	}
}

// Change describes the effect of one record.
type Change struct {
	Kind   ChangeKind
	Offset float64
	// Object is the object after the update, or the object just removed.
	// It is nil for removals of unknown objects.
	Object *Object
	// Properties are the properties carried by the update itself.
	Properties []acmi.Property
	Event      *acmi.Event
	Global     acmi.Property
}

// Object is the merged state of one object.
type Object struct {
	ID         uint64
	Coords     acmi.Coords
	Properties map[string]acmi.Property
	FirstSeen  float64
	LastSeen   float64
}

// Text returns a text property, or "" when unset.
func (o *Object) Text(key acmi.Key) string {
	if p, ok := o.Properties[string(key)].(acmi.Text); ok {
		return p.Value
	}
	return ""
}

// Tags returns the object's Type tags.
func (o *Object) Tags() []acmi.Tag {
	if p, ok := o.Properties[string(acmi.KeyType)].(acmi.ObjectType); ok {
		return p.Tags
	}
	return nil
}

// Tracker applies records in order. It is not safe for concurrent use.
type Tracker struct {
	refLat  float64
	refLon  float64
	refTime time.Time
	offset  float64

	globals     map[string]acmi.Property
	globalOrder []string
	objects     map[uint64]*Object
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		globals: make(map[string]acmi.Property),
		objects: make(map[uint64]*Object),
	}
}

// Apply folds rec into the tracked state.
func (t *Tracker) Apply(rec acmi.Record) (Change, error) {
	switch rec := rec.(type) {
	case acmi.GlobalProperty:
		return t.applyGlobal(rec.Property)
	case acmi.Frame:
		t.offset = rec.Offset
		return Change{Kind: ChangeFrame, Offset: t.offset}, nil
	case acmi.Update:
		return t.applyUpdate(rec), nil
	case acmi.Remove:
		obj, ok := t.objects[rec.ID]
		if ok {
			delete(t.objects, rec.ID)
			obj.LastSeen = t.offset
		}
		return Change{Kind: ChangeRemoved, Offset: t.offset, Object: obj}, nil
	case acmi.Event:
		return Change{Kind: ChangeEvent, Offset: t.offset, Event: &rec}, nil
	}
	return Change{}, fmt.Errorf("unsupported record type %T", rec)
}

func (t *Tracker) applyGlobal(p acmi.Property) (Change, error) {
	if p == nil {
		return Change{}, fmt.Errorf("global record without property")
	}
	name := p.Name()
	if _, seen := t.globals[name]; !seen {
		t.globalOrder = append(t.globalOrder, name)
	}
	t.globals[name] = p
	change := Change{Kind: ChangeGlobal, Offset: t.offset, Global: p}

	switch p := p.(type) {
	case acmi.Number:
		switch p.Key {
		case acmi.KeyReferenceLatitude:
			t.refLat = p.Value
		case acmi.KeyReferenceLongitude:
			t.refLon = p.Value
		}
	case acmi.Text:
		if p.Key == acmi.KeyReferenceTime {
			ts, err := time.Parse(time.RFC3339, p.Value)
			if err != nil {
				return change, fmt.Errorf("%w %q: %w", ErrInvalidReferenceTime, p.Value, err)
			}
			t.refTime = ts
		}
	}
	return change, nil
}

func (t *Tracker) applyUpdate(u acmi.Update) Change {
	kind := ChangeUpdated
	obj, ok := t.objects[u.ID]
	if !ok {
		obj = &Object{
			ID:         u.ID,
			Properties: make(map[string]acmi.Property),
			FirstSeen:  t.offset,
		}
		t.objects[u.ID] = obj
		kind = ChangeCreated
	}
	obj.LastSeen = t.offset

	for _, p := range u.Properties {
		if tr, isTransform := p.(acmi.Transform); isTransform {
			obj.Coords.Update(tr.Coords, t.refLat, t.refLon)
			continue
		}
		obj.Properties[p.Name()] = p
	}
	return Change{Kind: kind, Offset: t.offset, Object: obj, Properties: u.Properties}
}

// Offset returns the current frame offset in seconds.
func (t *Tracker) Offset() float64 {
	return t.offset
}

// Reference returns the reference latitude and longitude.
func (t *Tracker) Reference() (lat, lon float64) {
	return t.refLat, t.refLon
}

// ReferenceTime returns the parsed ReferenceTime, zero when unknown.
func (t *Tracker) ReferenceTime() time.Time {
	return t.refTime
}

// Time returns the absolute time of the current frame, or the zero time when
// no reference time has been seen.
func (t *Tracker) Time() time.Time {
	if t.refTime.IsZero() {
		return time.Time{}
	}
	return t.refTime.Add(acmi.Frame{Offset: t.offset}.Duration())
}

// Global returns a global property by name.
func (t *Tracker) Global(name string) (acmi.Property, bool) {
	p, ok := t.globals[name]
	return p, ok
}

// Globals returns the global properties in first-seen order.
func (t *Tracker) Globals() []acmi.Property {
	out := make([]acmi.Property, 0, len(t.globalOrder))
	for _, name := range t.globalOrder {
		out = append(out, t.globals[name])
	}
	return out
}

// Object returns a live object.
func (t *Tracker) Object(id uint64) (*Object, bool) {
	obj, ok := t.objects[id]
	return obj, ok
}

// Len returns the number of live objects.
func (t *Tracker) Len() int {
	return len(t.objects)
}
