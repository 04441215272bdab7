package acmi

import (
	"fmt"
	"strconv"
	"strings"
)

// Property is one Name=Value pair of an object update or a global record.
// The concrete types are Text, Number, Ref, Flag, Integer, Indexed,
// ObjectType, ColorProperty, Transform and Unknown.
type Property interface {
	// Name returns the property name as written on the wire.
	Name() string
	// WireValue returns the value as written on the wire.
	WireValue() string
	property()
}

// Text is a free-form string property such as Name or Title.
type Text struct {
	Key   Key
	Value string
}

// Number is a float property such as IAS or ReferenceLatitude.
type Number struct {
	Key   Key
	Value float64
}

// Ref points to another object by id (Parent, Next, FocusedTarget, LockedTarget).
type Ref struct {
	Key Key
	ID  uint64
}

// Flag is a boolean encoded as an integer (Disabled, Visible).
type Flag struct {
	Key   Key
	Value bool
}

// Integer is a decimal unsigned property (Slot).
type Integer struct {
	Key   Key
	Value uint64
}

// Indexed is a per-tank or per-meter fuel value. Index 0 is written as the
// bare key, index k as the key followed by k+1.
type Indexed struct {
	Key   Key
	Index uint8
	Value float64
}

// ObjectType is the Type property, an ordered set of tags.
type ObjectType struct {
	Tags []Tag
}

// ColorProperty is the Color property.
type ColorProperty struct {
	Color Color
}

// Transform is the T property.
type Transform struct {
	Coords Coords
}

// Unknown keeps any property outside the known vocabulary verbatim.
type Unknown struct {
	Key   string
	Value string
}

func (p Text) Name() string          { return string(p.Key) }
func (p Number) Name() string        { return string(p.Key) }
func (p Ref) Name() string           { return string(p.Key) }
func (p Flag) Name() string          { return string(p.Key) }
func (p Integer) Name() string       { return string(p.Key) }
func (p ObjectType) Name() string    { return string(KeyType) }
func (p ColorProperty) Name() string { return string(KeyColor) }
func (p Transform) Name() string     { return string(KeyTransform) }
func (p Unknown) Name() string       { return p.Key }

func (p Indexed) Name() string {
	if p.Index == 0 {
		return string(p.Key)
	}
	return string(p.Key) + strconv.Itoa(int(p.Index)+1)
}

func (p Text) WireValue() string          { return escapeText(p.Value) }
func (p Ref) WireValue() string           { return strconv.FormatUint(p.ID, 16) }
func (p Integer) WireValue() string       { return strconv.FormatUint(p.Value, 10) }
func (p Indexed) WireValue() string       { return formatFloat(p.Value) }
func (p ObjectType) WireValue() string    { return formatTags(p.Tags) }
func (p ColorProperty) WireValue() string { return string(p.Color) }
func (p Transform) WireValue() string     { return p.Coords.String() }
func (p Unknown) WireValue() string       { return p.Value }

func (p Number) WireValue() string {
	if p.Key == KeyReferenceLatitude || p.Key == KeyReferenceLongitude {
		return formatFloat(Round(p.Value, referencePrecision))
	}
	return formatFloat(p.Value)
}

func (p Flag) WireValue() string {
	if p.Value {
		return "1"
	}
	return "0"
}

func (Text) property()          {}
func (Number) property()        {}
func (Ref) property()           {}
func (Flag) property()          {}
func (Integer) property()       {}
func (Indexed) property()       {}
func (ObjectType) property()    {}
func (ColorProperty) property() {}
func (Transform) property()     {}
func (Unknown) property()       {}

// FormatProperty renders p as Name=Value.
func FormatProperty(p Property) string {
	return p.Name() + "=" + p.WireValue()
}

// ParseProperty parses one Name=Value field of an object update. Names
// outside the known vocabulary yield Unknown.
func ParseProperty(field string) (Property, error) {
	name, value, ok := strings.Cut(field, "=")
	if !ok {
		return nil, &DelimiterError{Delim: '='}
	}
	return parseObjectProperty(name, value)
}

// ParseGlobalProperty parses the Name=Value part of a global (id 0) record.
func ParseGlobalProperty(field string) (Property, error) {
	name, value, ok := strings.Cut(field, "=")
	if !ok {
		return nil, &DelimiterError{Delim: '='}
	}
	return parseGlobalProperty(name, value)
}

func parseObjectProperty(name, value string) (Property, error) {
	key := Key(name)
	kind, ok := objectKeys[key]
	if !ok {
		if base, index, ok := splitIndexed(name); ok {
			return parseIndexed(base, index, value)
		}
		return Unknown{Key: name, Value: value}, nil
	}

	switch kind {
	case kindText:
		return Text{Key: key, Value: unescapeText(value)}, nil
	case kindNumber:
		v, err := parseFloat(value)
		if err != nil {
			return nil, err
		}
		return Number{Key: key, Value: v}, nil
	case kindRef:
		id, err := parseID(value)
		if err != nil {
			return nil, err
		}
		return Ref{Key: key, ID: id}, nil
	case kindFlag:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, numericError(value, err)
		}
		return Flag{Key: key, Value: v != 0}, nil
	case kindInteger:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, numericError(value, err)
		}
		return Integer{Key: key, Value: v}, nil
	case kindType:
		return ObjectType{Tags: parseTags(value)}, nil
	case kindColor:
		return ColorProperty{Color: Color(value)}, nil
	case kindTransform:
		c, err := ParseCoords(value)
		if err != nil {
			return nil, err
		}
		return Transform{Coords: c}, nil
	case kindIndexed:
		return parseIndexed(key, 0, value)
	}
	return nil, fmt.Errorf("acmi: unhandled property kind %d for %s", kind, name)
}

func parseGlobalProperty(name, value string) (Property, error) {
	key := Key(name)
	kind, ok := globalKeys[key]
	if !ok {
		return Unknown{Key: name, Value: value}, nil
	}
	if kind == kindNumber {
		v, err := parseFloat(value)
		if err != nil {
			return nil, err
		}
		return Number{Key: key, Value: v}, nil
	}
	return Text{Key: key, Value: unescapeText(value)}, nil
}

func parseIndexed(key Key, index uint8, value string) (Property, error) {
	v, err := parseFloat(value)
	if err != nil {
		return nil, err
	}
	return Indexed{Key: key, Index: index, Value: v}, nil
}

// splitIndexed recognises Base2..Base10 for the fuel families.
func splitIndexed(name string) (Key, uint8, bool) {
	for _, base := range []Key{KeyFuelWeight, KeyFuelVolume, KeyFuelFlowWeight, KeyFuelFlowVolume} {
		suffix, ok := strings.CutPrefix(name, string(base))
		if !ok || suffix == "" || suffix[0] == '0' || !isDigits(suffix) {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 2 || n > maxFuelIndex+1 {
			continue
		}
		return base, uint8(n - 1), true
	}
	return "", 0, false
}

func parseFloat(value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, numericError(value, err)
	}
	return v, nil
}

func parseID(value string) (uint64, error) {
	id, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return 0, idError(value, err)
	}
	return id, nil
}
