package geo

import (
	"errors"
	"math"

	"github.com/OCAP2/acmi/pkg/acmi"
	"github.com/OCAP2/acmi/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Positions are stored as EPSG:3857 so that SQLite, which has no spatial
// support, can still round-trip them through the geometry Scan/Value pair.
// Geometry data is stored in the WKB format.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

var to3857 = wgs84.EPSG().Transform(4326, 3857)

// PositionFromCoords extracts the WGS84 position of merged coords. Altitude
// defaults to 0 when unknown. It fails when longitude or latitude is missing
// or out of range.
func PositionFromCoords(c acmi.Coords) (core.Position3D, error) {
	if c.Longitude == nil || c.Latitude == nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	lon, lat := *c.Longitude, *c.Latitude
	if math.IsNaN(lon) || math.IsNaN(lat) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var alt float64
	if c.Altitude != nil {
		alt = *c.Altitude
	}
	return core.Position3D{X: lon, Y: lat, Z: alt}, nil
}

// Coords3857From4326 creates a 3857 point from a longitude, latitude and elevation
func Coords3857From4326(
	longitude float64,
	latitude float64,
	elevation float64,
) (
	point geom.Point,
	err error,
) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return geom.NewEmptyPoint(geom.DimXYZ), ErrInvalidCoordinates
	}
	x, y, _ := to3857(longitude, latitude, 0)
	point = geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Z:    elevation,
			Type: geom.DimXYZ,
		},
	)
	return point, nil
}

// PointFromPosition projects a WGS84 position to a 3857 point.
func PointFromPosition(pos core.Position3D) (geom.Point, error) {
	return Coords3857From4326(pos.X, pos.Y, pos.Z)
}
