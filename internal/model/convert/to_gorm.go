// Package convert maps pkg/core values to their GORM models.
package convert

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/OCAP2/acmi/internal/geo"
	"github.com/OCAP2/acmi/internal/model"
	"github.com/OCAP2/acmi/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// toJSON marshals v for a JSON column. empty is stored when v has no elements.
func toJSON[T any](v []T, empty string) datatypes.JSON {
	if len(v) == 0 {
		return datatypes.JSON(empty)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON(empty)
	}
	return datatypes.JSON(data)
}

func mapToJSON(m map[string]string) datatypes.JSON {
	if len(m) == 0 {
		return datatypes.JSON("{}")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(data)
}

// CoreToRecording converts a core.Recording to a GORM model.Recording.
func CoreToRecording(r core.Recording) model.Recording {
	rec := model.Recording{
		SourceFile:         r.SourceFile,
		FileVersion:        r.FileVersion,
		Title:              r.Title,
		Category:           r.Category,
		Author:             r.Author,
		DataSource:         r.DataSource,
		DataRecorder:       r.DataRecorder,
		Briefing:           r.Briefing,
		Debriefing:         r.Debriefing,
		Comments:           r.Comments,
		ReferenceTime:      nullTime(r.ReferenceTime),
		RecordingTime:      nullTime(r.RecordingTime),
		ReferenceLongitude: r.ReferenceLongitude,
		ReferenceLatitude:  r.ReferenceLatitude,
		ImportedAt:         r.ImportedAt,
		Duration:           r.Duration,
		Extra:              mapToJSON(r.Extra),
	}
	rec.ID = r.ID
	return rec
}

// CoreToObject converts a core.Object to a GORM model.Object. The row id is
// assigned by the database; core.Object.ID maps to model.Object.ObjectID.
func CoreToObject(o core.Object) model.Object {
	return model.Object{
		ObjectID:  o.ID,
		Name:      o.Name,
		Type:      strings.Join(o.Type, "+"),
		CallSign:  o.CallSign,
		Pilot:     o.Pilot,
		Group:     o.Group,
		Country:   o.Country,
		Coalition: o.Coalition,
		Color:     o.Color,
		ParentID:  o.Parent,
		FirstSeen: o.FirstSeen,
		Time:      nullTime(o.Time),
	}
}

// CoreToObjectState converts a core.ObjectState to a GORM model.ObjectState.
// Positions that cannot be projected are stored as an empty point with the
// raw WGS84 columns still set.
func CoreToObjectState(s core.ObjectState) model.ObjectState {
	state := model.ObjectState{
		Time:       nullTime(s.Time),
		Offset:     s.Offset,
		Position:   geom.NewEmptyPoint(geom.DimXYZ),
		Roll:       nullFloat(s.Roll),
		Pitch:      nullFloat(s.Pitch),
		Yaw:        nullFloat(s.Yaw),
		Heading:    nullFloat(s.Heading),
		U:          nullFloat(s.U),
		V:          nullFloat(s.V),
		Properties: mapToJSON(s.Properties),
	}
	if s.HasPosition {
		state.Longitude = sql.NullFloat64{Float64: s.Position.X, Valid: true}
		state.Latitude = sql.NullFloat64{Float64: s.Position.Y, Valid: true}
		state.Altitude = sql.NullFloat64{Float64: s.Position.Z, Valid: true}
		if pt, err := geo.PointFromPosition(s.Position); err == nil {
			state.Position = pt
		}
	}
	return state
}

// CoreToEvent converts a core.Event to a GORM model.Event.
func CoreToEvent(e core.Event) model.Event {
	return model.Event{
		ID:        e.ID,
		Time:      nullTime(e.Time),
		Offset:    e.Offset,
		Kind:      e.Kind,
		ObjectIDs: toJSON(e.ObjectIDs, "[]"),
		Params:    toJSON(e.Params, "[]"),
		Text:      sql.NullString{String: e.Text, Valid: e.Text != ""},
	}
}
