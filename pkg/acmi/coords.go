package acmi

import (
	"fmt"
	"strconv"
	"strings"
)

// Coords is an object transform. Nil fields are absent: either not sent on
// the wire or, after Update, never reported.
//
// Longitude and latitude are relative to the recording's reference point on
// the wire and absolute once merged with Update. U and V are native flat-world
// coordinates in metres.
type Coords struct {
	Longitude *float64
	Latitude  *float64
	Altitude  *float64
	U         *float64
	V         *float64
	Roll      *float64
	Pitch     *float64
	Yaw       *float64
	Heading   *float64
}

// Float64 returns a pointer to v, for building Coords literals.
func Float64(v float64) *float64 {
	return &v
}

// ParseCoords parses the value of a T= property. The slot count selects the
// layout:
//
//	3: lon|lat|alt
//	5: lon|lat|alt|u|v
//	6: lon|lat|alt|roll|pitch|yaw
//	9: lon|lat|alt|roll|pitch|yaw|u|v|heading
//
// Empty slots are left nil.
func ParseCoords(value string) (Coords, error) {
	parts := strings.Split(value, "|")
	slots := make([]*float64, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return Coords{}, numericError(part, err)
		}
		slots[i] = &v
	}

	var c Coords
	switch len(slots) {
	case 3:
		c.Longitude, c.Latitude, c.Altitude = slots[0], slots[1], slots[2]
	case 5:
		c.Longitude, c.Latitude, c.Altitude = slots[0], slots[1], slots[2]
		c.U, c.V = slots[3], slots[4]
	case 6:
		c.Longitude, c.Latitude, c.Altitude = slots[0], slots[1], slots[2]
		c.Roll, c.Pitch, c.Yaw = slots[3], slots[4], slots[5]
	case 9:
		c.Longitude, c.Latitude, c.Altitude = slots[0], slots[1], slots[2]
		c.Roll, c.Pitch, c.Yaw = slots[3], slots[4], slots[5]
		c.U, c.V, c.Heading = slots[6], slots[7], slots[8]
	default:
		return Coords{}, fmt.Errorf("%w: %d slots", ErrInvalidCoordinateFormat, len(slots))
	}
	return c, nil
}

// Update merges delta into c. Longitude and latitude present in delta are
// offset by the reference point; every other present field replaces the
// current value. Fields absent from delta are kept.
func (c *Coords) Update(delta Coords, refLat, refLon float64) {
	if delta.Longitude != nil {
		c.Longitude = Float64(*delta.Longitude + refLon)
	}
	if delta.Latitude != nil {
		c.Latitude = Float64(*delta.Latitude + refLat)
	}
	replace(&c.Altitude, delta.Altitude)
	replace(&c.U, delta.U)
	replace(&c.V, delta.V)
	replace(&c.Roll, delta.Roll)
	replace(&c.Pitch, delta.Pitch)
	replace(&c.Yaw, delta.Yaw)
	replace(&c.Heading, delta.Heading)
}

func replace(dst **float64, src *float64) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// Equal reports whether both transforms carry the same fields with the same values.
func (c Coords) Equal(o Coords) bool {
	return eqFloat(c.Longitude, o.Longitude) && eqFloat(c.Latitude, o.Latitude) &&
		eqFloat(c.Altitude, o.Altitude) && eqFloat(c.U, o.U) && eqFloat(c.V, o.V) &&
		eqFloat(c.Roll, o.Roll) && eqFloat(c.Pitch, o.Pitch) && eqFloat(c.Yaw, o.Yaw) &&
		eqFloat(c.Heading, o.Heading)
}

func eqFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// String renders c in the narrowest layout that holds every present field.
func (c Coords) String() string {
	rotated := c.Roll != nil || c.Pitch != nil || c.Yaw != nil
	flat := c.U != nil || c.V != nil

	var slots []*float64
	switch {
	case c.Heading != nil || (rotated && flat):
		slots = []*float64{c.Longitude, c.Latitude, c.Altitude, c.Roll, c.Pitch, c.Yaw, c.U, c.V, c.Heading}
	case rotated:
		slots = []*float64{c.Longitude, c.Latitude, c.Altitude, c.Roll, c.Pitch, c.Yaw}
	case flat:
		slots = []*float64{c.Longitude, c.Latitude, c.Altitude, c.U, c.V}
	default:
		slots = []*float64{c.Longitude, c.Latitude, c.Altitude}
	}

	var sb strings.Builder
	for i, v := range slots {
		if i > 0 {
			sb.WriteByte('|')
		}
		if v != nil {
			sb.WriteString(formatFloat(*v))
		}
	}
	return sb.String()
}
