package acmi

import (
	"fmt"
	"strings"
)

// EventKind names an event. Kinds outside the known set are kept as-is.
type EventKind string

const (
	EventMessage   EventKind = "Message"
	EventBookmark  EventKind = "Bookmark"
	EventDebug     EventKind = "Debug"
	EventLeftArea  EventKind = "LeftArea"
	EventDestroyed EventKind = "Destroyed"
	EventTakenOff  EventKind = "TakenOff"
	EventLanded    EventKind = "Landed"
	EventTimeout   EventKind = "Timeout"
)

// Known reports whether k is a documented event kind.
func (k EventKind) Known() bool {
	switch k {
	case EventMessage, EventBookmark, EventDebug, EventLeftArea,
		EventDestroyed, EventTakenOff, EventLanded, EventTimeout:
		return true
	}
	return false
}

// ParseEvent parses the value of a global Event property:
// Kind|param|...|text. The last segment becomes Text unless it is empty.
func ParseEvent(value string) (Event, error) {
	parts := strings.Split(value, "|")
	if parts[0] == "" {
		return Event{}, fmt.Errorf("%w: empty kind in %q", ErrInvalidEvent, value)
	}

	ev := Event{Kind: EventKind(parts[0])}
	params := parts[1:]
	if len(params) > 0 {
		last := params[len(params)-1]
		params = params[:len(params)-1]
		if last != "" {
			ev.Text = &last
		}
	}
	if len(params) > 0 {
		ev.Params = params
	}
	return ev, nil
}

// ObjectIDs returns the parameters that parse as object ids.
func (e Event) ObjectIDs() []uint64 {
	var ids []uint64
	for _, p := range e.Params {
		if id, err := parseID(p); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (e Event) value() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	for _, p := range e.Params {
		sb.WriteByte('|')
		sb.WriteString(p)
	}
	sb.WriteByte('|')
	if e.Text != nil {
		sb.WriteString(*e.Text)
	}
	return sb.String()
}
