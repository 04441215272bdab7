package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/pkg/core"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func newTestBackend(t *testing.T, compress bool) *Backend {
	t.Helper()
	b := New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: compress})
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func testRecording() *core.Recording {
	return &core.Recording{
		SourceFile:    "track.acmi",
		FileVersion:   "2.2",
		Title:         "Red Flag: Day 1",
		ReferenceTime: time.Date(2011, 6, 2, 5, 0, 0, 0, time.UTC),
	}
}

func TestAddObject_TracksLiveObject(t *testing.T) {
	b := newTestBackend(t, false)
	require.NoError(t, b.StartRecording(testRecording()))

	require.NoError(t, b.AddObject(&core.Object{ID: 0xa1, Name: "F-16C"}))

	require.Contains(t, b.live, uint64(0xa1))
	assert.Equal(t, "F-16C", b.live[0xa1].Object.Name)
	assert.NotContains(t, b.live, uint64(0xb2))
}

func TestRecordObjectState_UnknownObjectIgnored(t *testing.T) {
	b := newTestBackend(t, false)
	require.NoError(t, b.StartRecording(testRecording()))

	require.NoError(t, b.RecordObjectState(&core.ObjectState{ObjectID: 0xff}))
	assert.Empty(t, b.objects)
}

func TestRemoveObject_ThenReuseID(t *testing.T) {
	b := newTestBackend(t, false)
	require.NoError(t, b.StartRecording(testRecording()))

	require.NoError(t, b.AddObject(&core.Object{ID: 0xa1, Name: "first"}))
	require.NoError(t, b.RecordObjectState(&core.ObjectState{ObjectID: 0xa1, Offset: 1}))
	require.NoError(t, b.RemoveObject(&core.Removal{ObjectID: 0xa1, Offset: 2}))

	assert.NotContains(t, b.live, uint64(0xa1))

	// State after removal is dropped.
	require.NoError(t, b.RecordObjectState(&core.ObjectState{ObjectID: 0xa1, Offset: 3}))

	require.NoError(t, b.AddObject(&core.Object{ID: 0xa1, Name: "second", FirstSeen: 4}))
	require.NoError(t, b.RecordObjectState(&core.ObjectState{ObjectID: 0xa1, Offset: 4}))

	require.Len(t, b.objects, 2)
	assert.Len(t, b.objects[0].States, 1)
	require.NotNil(t, b.objects[0].Removed)
	assert.Equal(t, 2.0, b.objects[0].Removed.Offset)
	assert.Len(t, b.objects[1].States, 1)
	assert.Nil(t, b.objects[1].Removed)
}

func TestRecordEvent_AssignsIDs(t *testing.T) {
	b := newTestBackend(t, false)
	require.NoError(t, b.StartRecording(testRecording()))

	first := &core.Event{Kind: "Bookmark"}
	second := &core.Event{Kind: "Message"}
	require.NoError(t, b.RecordEvent(first))
	require.NoError(t, b.RecordEvent(second))

	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(2), second.ID)
}

func TestStartRecording_ResetsState(t *testing.T) {
	b := newTestBackend(t, false)
	require.NoError(t, b.StartRecording(testRecording()))
	require.NoError(t, b.AddObject(&core.Object{ID: 1}))
	require.NoError(t, b.RecordEvent(&core.Event{Kind: "Bookmark"}))

	require.NoError(t, b.StartRecording(testRecording()))
	assert.Empty(t, b.objects)
	assert.Empty(t, b.live)
	assert.Empty(t, b.events)
	assert.Empty(t, b.ExportedFilePath())
}

func TestEndRecording_WithoutStart(t *testing.T) {
	b := newTestBackend(t, false)
	assert.NoError(t, b.EndRecording())
	assert.Empty(t, b.ExportedFilePath())
}

func populate(t *testing.T, b *Backend) *core.Recording {
	t.Helper()
	rec := testRecording()
	require.NoError(t, b.StartRecording(rec))

	require.NoError(t, b.AddObject(&core.Object{
		ID:     0x3000102,
		Name:   "F-16C-52",
		Type:   []string{"Air", "FixedWing"},
		Color:  "Blue",
		Parent: 0xa1,
	}))
	require.NoError(t, b.RecordObjectState(&core.ObjectState{
		ObjectID: 0x3000102, Offset: 0,
		Position: core.Position3D{X: 1, Y: 2, Z: 3000}, HasPosition: true,
		Heading: ptr(90),
	}))
	require.NoError(t, b.RecordObjectState(&core.ObjectState{ObjectID: 0x3000102, Offset: 0.5}))
	require.NoError(t, b.RecordObjectState(&core.ObjectState{
		ObjectID: 0x3000102, Offset: 1,
		Position: core.Position3D{X: 1.01, Y: 2, Z: 3100}, HasPosition: true,
	}))
	require.NoError(t, b.RemoveObject(&core.Removal{ObjectID: 0x3000102, Offset: 5}))
	require.NoError(t, b.RecordEvent(&core.Event{
		Offset: 5, Kind: "Destroyed", ObjectIDs: []uint64{0x3000102}, Params: []string{"3000102"},
	}))

	rec.Duration = 5
	require.NoError(t, b.EndRecording())
	return rec
}

func TestEndRecording_WritesJSON(t *testing.T) {
	b := newTestBackend(t, false)
	populate(t, b)

	path := b.ExportedFilePath()
	assert.Equal(t, "Red_Flag__Day_1_20110602_050000.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var export RecordingExport
	require.NoError(t, json.Unmarshal(data, &export))

	assert.Equal(t, "Red Flag: Day 1", export.Title)
	assert.Equal(t, 5.0, export.Duration)
	require.NotNil(t, export.ReferenceTime)
	assert.Nil(t, export.RecordingTime)

	require.Len(t, export.Objects, 1)
	obj := export.Objects[0]
	assert.Equal(t, "3000102", obj.ID)
	assert.Equal(t, "a1", obj.Parent)
	assert.Equal(t, []string{"Air", "FixedWing"}, obj.Type)
	require.NotNil(t, obj.RemovedAt)
	assert.Equal(t, 5.0, *obj.RemovedAt)

	require.Len(t, obj.Positions, 2, "states without a position are skipped")
	assert.Equal(t, []any{0.0, 1.0, 2.0, 3000.0, 90.0}, obj.Positions[0])
	assert.Nil(t, obj.Positions[1][4], "unknown heading is null")
	assert.True(t, strings.HasPrefix(obj.Track, "LINESTRING Z"), obj.Track)

	require.Len(t, export.Events, 1)
	assert.Equal(t, []any{5.0, "Destroyed", []any{"3000102"}, []any{"3000102"}, ""}, export.Events[0])
}

func TestEndRecording_WritesGzip(t *testing.T) {
	b := newTestBackend(t, true)
	populate(t, b)

	path := b.ExportedFilePath()
	assert.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var export RecordingExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	assert.Len(t, export.Objects, 1)
}

func TestExportFileName(t *testing.T) {
	imported := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name     string
		rec      core.Recording
		compress bool
		want     string
	}{
		{"title and reference time", core.Recording{Title: "Op A", ReferenceTime: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)}, false, "Op_A_20200102_030405.json"},
		{"falls back to import time", core.Recording{Title: "Op", ImportedAt: imported}, false, "Op_20240304_050607.json"},
		{"untitled", core.Recording{ImportedAt: imported}, true, "recording_20240304_050607.json.gz"},
		{"path separators", core.Recording{Title: `a/b\c`, ImportedAt: imported}, false, "a_b_c_20240304_050607.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(config.MemoryConfig{CompressOutput: tt.compress})
			b.recording = &tt.rec
			assert.Equal(t, tt.want, b.exportFileName())
		})
	}
}

func TestEndRecording_OutputDirError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	b := New(config.MemoryConfig{OutputDir: filepath.Join(file, "sub")})
	require.NoError(t, b.StartRecording(testRecording()))
	assert.ErrorContains(t, b.EndRecording(), "failed to create output directory")
}
