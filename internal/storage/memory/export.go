// internal/storage/memory/export.go
package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/OCAP2/acmi/internal/geo"
	"github.com/OCAP2/acmi/pkg/core"
	"github.com/klauspost/compress/gzip"
)

// RecordingExport is the root JSON structure
type RecordingExport struct {
	SourceFile         string            `json:"sourceFile"`
	FileVersion        string            `json:"fileVersion"`
	Title              string            `json:"title"`
	Category           string            `json:"category,omitempty"`
	Author             string            `json:"author,omitempty"`
	DataSource         string            `json:"dataSource,omitempty"`
	DataRecorder       string            `json:"dataRecorder,omitempty"`
	Briefing           string            `json:"briefing,omitempty"`
	Debriefing         string            `json:"debriefing,omitempty"`
	Comments           string            `json:"comments,omitempty"`
	ReferenceTime      *time.Time        `json:"referenceTime,omitempty"`
	RecordingTime      *time.Time        `json:"recordingTime,omitempty"`
	ReferenceLongitude float64           `json:"referenceLongitude"`
	ReferenceLatitude  float64           `json:"referenceLatitude"`
	Duration           float64           `json:"duration"`
	Extra              map[string]string `json:"extra,omitempty"`
	Objects            []ObjectJSON      `json:"objects"`
	Events             [][]any           `json:"events"`
}

// ObjectJSON represents one object and its positions
type ObjectJSON struct {
	ID        string   `json:"id"` // lowercase hex, as in the recording
	Name      string   `json:"name,omitempty"`
	Type      []string `json:"type,omitempty"`
	CallSign  string   `json:"callSign,omitempty"`
	Pilot     string   `json:"pilot,omitempty"`
	Group     string   `json:"group,omitempty"`
	Country   string   `json:"country,omitempty"`
	Coalition string   `json:"coalition,omitempty"`
	Color     string   `json:"color,omitempty"`
	Parent    string   `json:"parent,omitempty"`
	FirstSeen float64  `json:"firstSeen"`
	RemovedAt *float64 `json:"removedAt,omitempty"`
	// Positions holds [offset, longitude, latitude, altitude, heading] rows.
	// heading is null when unknown.
	Positions [][]any `json:"positions"`
	// Track is the EPSG:3857 ground track as WKT, when at least two positions are known.
	Track string `json:"track,omitempty"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// exportFileName builds "<title>_<timestamp>.json[.gz]"
func (b *Backend) exportFileName() string {
	title := b.recording.Title
	if title == "" {
		title = "recording"
	}
	title = strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_").Replace(title)

	ts := b.recording.ReferenceTime
	if ts.IsZero() {
		ts = b.recording.ImportedAt
	}
	name := fmt.Sprintf("%s_%s.json", title, ts.UTC().Format("20060102_150405"))
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return name
}

// exportJSON writes the recording to a JSON file, gzipped when configured
func (b *Backend) exportJSON() error {
	export := b.buildExport()

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFileName())

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if b.cfg.CompressOutput {
		err = writeGzipJSON(f, export)
	} else {
		err = json.NewEncoder(f).Encode(export)
	}
	if err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() RecordingExport {
	rec := b.recording
	export := RecordingExport{
		SourceFile:         rec.SourceFile,
		FileVersion:        rec.FileVersion,
		Title:              rec.Title,
		Category:           rec.Category,
		Author:             rec.Author,
		DataSource:         rec.DataSource,
		DataRecorder:       rec.DataRecorder,
		Briefing:           rec.Briefing,
		Debriefing:         rec.Debriefing,
		Comments:           rec.Comments,
		ReferenceTime:      optionalTime(rec.ReferenceTime),
		RecordingTime:      optionalTime(rec.RecordingTime),
		ReferenceLongitude: rec.ReferenceLongitude,
		ReferenceLatitude:  rec.ReferenceLatitude,
		Duration:           rec.Duration,
		Extra:              rec.Extra,
		Objects:            make([]ObjectJSON, 0, len(b.objects)),
		Events:             make([][]any, 0, len(b.events)),
	}

	for _, record := range b.objects {
		export.Objects = append(export.Objects, buildObject(record))
	}

	// Format: [offset, kind, [objectIds], [params], text]
	for _, evt := range b.events {
		ids := make([]string, 0, len(evt.ObjectIDs))
		for _, id := range evt.ObjectIDs {
			ids = append(ids, strconv.FormatUint(id, 16))
		}
		params := evt.Params
		if params == nil {
			params = []string{}
		}
		export.Events = append(export.Events, []any{
			evt.Offset,
			evt.Kind,
			ids,
			params,
			evt.Text,
		})
	}

	return export
}

func buildObject(record *ObjectRecord) ObjectJSON {
	o := record.Object
	obj := ObjectJSON{
		ID:        strconv.FormatUint(o.ID, 16),
		Name:      o.Name,
		Type:      o.Type,
		CallSign:  o.CallSign,
		Pilot:     o.Pilot,
		Group:     o.Group,
		Country:   o.Country,
		Coalition: o.Coalition,
		Color:     o.Color,
		FirstSeen: o.FirstSeen,
		Positions: make([][]any, 0, len(record.States)),
	}
	if o.Parent != 0 {
		obj.Parent = strconv.FormatUint(o.Parent, 16)
	}
	if record.Removed != nil {
		removedAt := record.Removed.Offset
		obj.RemovedAt = &removedAt
	}

	track := make([]core.Position3D, 0, len(record.States))
	for _, state := range record.States {
		if !state.HasPosition {
			continue
		}
		var heading any
		if state.Heading != nil {
			heading = *state.Heading
		}
		obj.Positions = append(obj.Positions, []any{
			state.Offset,
			state.Position.X,
			state.Position.Y,
			state.Position.Z,
			heading,
		})
		track = append(track, state.Position)
	}

	if ls, err := geo.TrackLineString(track); err == nil {
		obj.Track = ls.AsText()
	}
	return obj
}

func writeGzipJSON(w io.Writer, data RecordingExport) error {
	gzWriter := gzip.NewWriter(w)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
