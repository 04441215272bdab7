package acmi

import (
	"fmt"
	"strings"
	"time"
)

// Record is one logical line of a recording. The concrete types are
// GlobalProperty, Event, Remove, Frame and Update.
type Record interface {
	record()
}

// GlobalProperty is a property of the recording itself (object id 0).
type GlobalProperty struct {
	Property Property
}

// Event is a global event such as a message or a bookmark. Params usually
// hold the ids of the objects involved.
type Event struct {
	Kind   EventKind
	Params []string
	Text   *string
}

// Remove marks an object as gone from the battlefield.
type Remove struct {
	ID uint64
}

// Frame starts a new time frame, Offset seconds after the reference time.
type Frame struct {
	Offset float64
}

// Duration returns the offset as a time.Duration.
func (f Frame) Duration() time.Duration {
	return time.Duration(f.Offset * float64(time.Second))
}

// Update carries changed properties of one object.
type Update struct {
	ID         uint64
	Properties []Property
}

func (GlobalProperty) record() {}
func (Event) record()          {}
func (Remove) record()         {}
func (Frame) record()          {}
func (Update) record()         {}

// ParseRecord parses a single logical line. Empty lines and comments carry
// no record and return (nil, nil).
func ParseRecord(line string) (Record, error) {
	switch {
	case line == "" || strings.HasPrefix(line, "//"):
		return nil, nil
	case line[0] == '-':
		id, err := parseID(line[1:])
		if err != nil {
			return nil, err
		}
		return Remove{ID: id}, nil
	case line[0] == '#':
		offset, err := parseFloat(line[1:])
		if err != nil {
			return nil, err
		}
		return Frame{Offset: offset}, nil
	}

	head, rest, ok := splitFirst(line)
	if !ok {
		return nil, fmt.Errorf("%w: no field after object id %q", ErrEOL, head)
	}
	if head == "0" {
		return parseGlobal(rest)
	}

	id, err := parseID(head)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("%w %q: updates cannot target the global object", ErrInvalidID, head)
	}
	u := Update{ID: id}
	if rest == "" {
		return u, nil
	}
	for _, field := range SplitFields(rest) {
		p, err := ParseProperty(field)
		if err != nil {
			return nil, fmt.Errorf("object %x: %w", id, err)
		}
		u.Properties = append(u.Properties, p)
	}
	return u, nil
}

func parseGlobal(rest string) (Record, error) {
	name, value, ok := strings.Cut(rest, "=")
	if !ok {
		return nil, &DelimiterError{Delim: '='}
	}
	if name == keyEvent {
		ev, err := ParseEvent(value)
		if err != nil {
			return nil, err
		}
		return ev, nil
	}
	p, err := parseGlobalProperty(name, value)
	if err != nil {
		return nil, err
	}
	return GlobalProperty{Property: p}, nil
}

// FormatRecord renders r as a single line without terminator. Newlines inside
// values are escaped so that the line reader joins them back. A value ending
// in a backslash has no encoding and yields ErrTrailingBackslash.
func FormatRecord(r Record) (string, error) {
	var line string
	switch r := r.(type) {
	case GlobalProperty:
		if r.Property == nil {
			return "", fmt.Errorf("acmi: global record without property")
		}
		line = "0," + FormatProperty(r.Property)
		if err := checkFieldEnd(line); err != nil {
			return "", err
		}
	case Event:
		if r.Kind == "" {
			return "", fmt.Errorf("%w: empty kind", ErrInvalidEvent)
		}
		line = "0," + keyEvent + "=" + r.value()
		if err := checkFieldEnd(line); err != nil {
			return "", err
		}
	case Remove:
		line = fmt.Sprintf("-%x", r.ID)
	case Frame:
		line = "#" + formatFloat(Round(r.Offset, framePrecision))
	case Update:
		if r.ID == 0 {
			return "", fmt.Errorf("%w: updates cannot target the global object", ErrInvalidID)
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%x,", r.ID)
		for i, p := range r.Properties {
			field := FormatProperty(p)
			if err := checkFieldEnd(field); err != nil {
				return "", err
			}
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(field)
		}
		line = sb.String()
	default:
		return "", fmt.Errorf("acmi: unsupported record type %T", r)
	}
	return escapeNewlines(line), nil
}

// checkFieldEnd rejects a field whose last byte is a backslash: it would
// escape the following comma or join the next line.
func checkFieldEnd(field string) error {
	if strings.HasSuffix(field, `\`) {
		return fmt.Errorf("%w: %q", ErrTrailingBackslash, field)
	}
	return nil
}

func escapeNewlines(line string) string {
	if !strings.Contains(line, "\n") {
		return line
	}
	line = strings.ReplaceAll(line, "\r\n", "\n")
	return strings.ReplaceAll(line, "\n", "\\\n")
}
