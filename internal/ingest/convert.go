package ingest

import (
	"maps"
	"time"

	"github.com/OCAP2/acmi/internal/geo"
	"github.com/OCAP2/acmi/internal/tracker"
	"github.com/OCAP2/acmi/pkg/acmi"
	"github.com/OCAP2/acmi/pkg/core"
)

// applyGlobal copies one global property onto the recording. Properties
// outside the known vocabulary land in Extra.
func applyGlobal(rec *core.Recording, p acmi.Property) {
	switch p := p.(type) {
	case acmi.Text:
		switch p.Key {
		case acmi.KeyTitle:
			rec.Title = p.Value
		case acmi.KeyCategory:
			rec.Category = p.Value
		case acmi.KeyAuthor:
			rec.Author = p.Value
		case acmi.KeyDataSource:
			rec.DataSource = p.Value
		case acmi.KeyDataRecorder:
			rec.DataRecorder = p.Value
		case acmi.KeyBriefing:
			rec.Briefing = p.Value
		case acmi.KeyDebriefing:
			rec.Debriefing = p.Value
		case acmi.KeyComments:
			rec.Comments = p.Value
		case acmi.KeyReferenceTime:
			if t, err := time.Parse(time.RFC3339, p.Value); err == nil {
				rec.ReferenceTime = t
			}
		case acmi.KeyRecordingTime:
			if t, err := time.Parse(time.RFC3339, p.Value); err == nil {
				rec.RecordingTime = t
			} else {
				rec.Extra[p.Name()] = p.Value
			}
		default:
			rec.Extra[p.Name()] = p.Value
		}
	case acmi.Number:
		switch p.Key {
		case acmi.KeyReferenceLongitude:
			rec.ReferenceLongitude = p.Value
		case acmi.KeyReferenceLatitude:
			rec.ReferenceLatitude = p.Value
		default:
			rec.Extra[p.Name()] = p.WireValue()
		}
	default:
		rec.Extra[p.Name()] = p.WireValue()
	}
}

// newRecording builds a recording from the globals seen so far.
func newRecording(source, version string, globals []acmi.Property, now time.Time) *core.Recording {
	rec := &core.Recording{
		SourceFile:  source,
		FileVersion: version,
		ImportedAt:  now,
		Extra:       make(map[string]string),
	}
	for _, p := range globals {
		applyGlobal(rec, p)
	}
	return rec
}

// toObject snapshots a tracked object's identity.
func toObject(o *tracker.Object, t time.Time) *core.Object {
	obj := &core.Object{
		ID:        o.ID,
		Name:      o.Text(acmi.KeyName),
		CallSign:  o.Text(acmi.KeyCallSign),
		Pilot:     o.Text(acmi.KeyPilot),
		Group:     o.Text(acmi.KeyGroup),
		Country:   o.Text(acmi.KeyCountry),
		Coalition: o.Text(acmi.KeyCoalition),
		FirstSeen: o.FirstSeen,
		Time:      t,
	}
	for _, tag := range o.Tags() {
		obj.Type = append(obj.Type, string(tag))
	}
	if c, ok := o.Properties[string(acmi.KeyColor)].(acmi.ColorProperty); ok {
		obj.Color = string(c.Color)
	}
	if ref, ok := o.Properties[string(acmi.KeyParent)].(acmi.Ref); ok {
		obj.Parent = ref.ID
	}
	return obj
}

// toState snapshots a tracked object's merged position together with the
// non-transform properties carried by the update that produced it.
func toState(o *tracker.Object, props []acmi.Property, offset float64, t time.Time) *core.ObjectState {
	s := &core.ObjectState{
		ObjectID:   o.ID,
		Offset:     offset,
		Time:       t,
		Roll:       copyFloat(o.Coords.Roll),
		Pitch:      copyFloat(o.Coords.Pitch),
		Yaw:        copyFloat(o.Coords.Yaw),
		Heading:    copyFloat(o.Coords.Heading),
		U:          copyFloat(o.Coords.U),
		V:          copyFloat(o.Coords.V),
		Properties: make(map[string]string),
	}
	if pos, err := geo.PositionFromCoords(o.Coords); err == nil {
		s.Position = pos
		s.HasPosition = true
	}
	for _, p := range props {
		if _, isTransform := p.(acmi.Transform); isTransform {
			continue
		}
		s.Properties[p.Name()] = propertyValue(p)
	}
	return s
}

func toEvent(e *acmi.Event, offset float64, t time.Time) *core.Event {
	ev := &core.Event{
		Offset:    offset,
		Time:      t,
		Kind:      string(e.Kind),
		ObjectIDs: e.ObjectIDs(),
		Params:    append([]string(nil), e.Params...),
	}
	if e.Text != nil {
		ev.Text = *e.Text
	}
	return ev
}

// propertyValue is the unescaped value of p.
func propertyValue(p acmi.Property) string {
	if text, ok := p.(acmi.Text); ok {
		return text.Value
	}
	return p.WireValue()
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// snapshot copies rec so that later globals do not race with readers of the
// copy.
func snapshot(rec *core.Recording) *core.Recording {
	c := *rec
	c.Extra = maps.Clone(rec.Extra)
	return &c
}
