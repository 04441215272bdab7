package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/OCAP2/acmi/pkg/acmi"
	"github.com/OCAP2/acmi/pkg/core"
)

func TestPositionFromCoords_Valid(t *testing.T) {
	pos, err := PositionFromCoords(acmi.Coords{
		Longitude: acmi.Float64(-115.5),
		Latitude:  acmi.Float64(36.25),
		Altitude:  acmi.Float64(1500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.X != -115.5 || pos.Y != 36.25 || pos.Z != 1500 {
		t.Errorf("unexpected position %+v", pos)
	}
}

func TestPositionFromCoords_DefaultAltitude(t *testing.T) {
	pos, err := PositionFromCoords(acmi.Coords{Longitude: acmi.Float64(1), Latitude: acmi.Float64(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos.Z != 0 {
		t.Errorf("expected altitude=0, got %f", pos.Z)
	}
}

func TestPositionFromCoords_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		coords acmi.Coords
	}{
		{"missing latitude", acmi.Coords{Longitude: acmi.Float64(1)}},
		{"missing longitude", acmi.Coords{Latitude: acmi.Float64(1)}},
		{"flat world only", acmi.Coords{U: acmi.Float64(100), V: acmi.Float64(200)}},
		{"latitude out of range", acmi.Coords{Longitude: acmi.Float64(1), Latitude: acmi.Float64(91)}},
		{"longitude out of range", acmi.Coords{Longitude: acmi.Float64(-181), Latitude: acmi.Float64(1)}},
		{"NaN latitude", acmi.Coords{Longitude: acmi.Float64(1), Latitude: acmi.Float64(math.NaN())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PositionFromCoords(tt.coords)
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", err)
			}
		})
	}
}

func TestCoords3857From4326_Origin(t *testing.T) {
	point, err := Coords3857From4326(0, 0, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coords, ok := point.Coordinates()
	if !ok {
		t.Fatal("expected valid coordinates")
	}
	if math.Abs(coords.X) > 1e-6 || math.Abs(coords.Y) > 1e-6 {
		t.Errorf("expected origin, got X=%f Y=%f", coords.X, coords.Y)
	}
	if coords.Z != 120 {
		t.Errorf("expected Z=120, got %f", coords.Z)
	}
}

func TestCoords3857From4326_Projects(t *testing.T) {
	point, err := Coords3857From4326(180, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coords, _ := point.Coordinates()
	// Half the equatorial circumference of the WGS84 sphere used by 3857.
	if math.Abs(coords.X-20037508.34) > 1 {
		t.Errorf("expected X close to 20037508.34, got %f", coords.X)
	}
}

func TestCoords3857From4326_OutOfRange(t *testing.T) {
	point, err := Coords3857From4326(0, 95, 0)
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
	if !point.IsEmpty() {
		t.Error("expected empty point")
	}
}

func TestPointFromPosition(t *testing.T) {
	point, err := PointFromPosition(core.Position3D{X: 0, Y: 0, Z: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coords, _ := point.Coordinates()
	if coords.Z != 10 {
		t.Errorf("expected Z=10, got %f", coords.Z)
	}
}
