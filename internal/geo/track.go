package geo

import (
	"fmt"

	"github.com/OCAP2/acmi/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// TrackLineString builds the ground track of an object from its WGS84
// positions, projected to 3857 with altitude kept as Z.
func TrackLineString(positions []core.Position3D) (geom.LineString, error) {
	if len(positions) < 2 {
		return geom.LineString{}, fmt.Errorf("track must have at least 2 points, got %d", len(positions))
	}

	flatCoords := make([]float64, 0, len(positions)*3)
	for i, pos := range positions {
		x, y, _ := to3857(pos.X, pos.Y, 0)
		if pos.Y < -90 || pos.Y > 90 || pos.X < -180 || pos.X > 180 {
			return geom.LineString{}, fmt.Errorf("track point %d: %w", i, ErrInvalidCoordinates)
		}
		flatCoords = append(flatCoords, x, y, pos.Z)
	}

	seq := geom.NewSequence(flatCoords, geom.DimXYZ)
	return geom.NewLineString(seq), nil
}
