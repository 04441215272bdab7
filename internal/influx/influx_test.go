package influx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/pkg/core"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func unreachableConfig(t *testing.T) config.InfluxConfig {
	return config.InfluxConfig{
		Host:       "127.0.0.1",
		Port:       "1",
		Protocol:   "http",
		Org:        "acmi",
		Bucket:     "telemetry",
		BackupPath: filepath.Join(t.TempDir(), "backup", "influx.lp.gz"),
	}
}

func readBackup(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(data)
}

func testRecording() *core.Recording {
	return &core.Recording{
		Title:         "Test",
		SourceFile:    "/tmp/test.acmi",
		ReferenceTime: time.Date(2011, 6, 2, 5, 0, 0, 0, time.UTC),
	}
}

func TestNewManager_DefaultBatchSize(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, 0, zerolog.Nop())
	assert.Equal(t, 2500, m.batchSize)
	assert.False(t, m.IsValid)
}

func TestWritePoint_Uninitialized(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, 10, zerolog.Nop())
	require.NoError(t, m.StartRecording(testRecording()))
	require.NoError(t, m.AddObject(&core.Object{ID: 0xa1}))
	assert.Error(t, m.RecordObjectState(&core.ObjectState{ObjectID: 0xa1}))
}

func TestRequiresRecording(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, 10, zerolog.Nop())
	assert.ErrorIs(t, m.AddObject(&core.Object{ID: 1}), ErrNoRecording)
	assert.ErrorIs(t, m.RecordObjectState(&core.ObjectState{ObjectID: 1}), ErrNoRecording)
	assert.ErrorIs(t, m.RemoveObject(&core.Removal{ObjectID: 1}), ErrNoRecording)
	assert.ErrorIs(t, m.RecordEvent(&core.Event{Kind: "Bookmark"}), ErrNoRecording)
	assert.NoError(t, m.EndRecording())
}

func TestBackupFallback(t *testing.T) {
	cfg := unreachableConfig(t)
	m := NewManager(cfg, 10, zerolog.Nop())
	require.NoError(t, m.Init())
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	require.NoError(t, m.StartRecording(testRecording()))
	require.NoError(t, m.AddObject(&core.Object{
		ID:        0xa1,
		Name:      "F-16",
		Type:      []string{"Air", "FixedWing"},
		Coalition: "Allies",
	}))
	require.NoError(t, m.RecordObjectState(&core.ObjectState{
		ObjectID:    0xa1,
		Offset:      1.5,
		Position:    core.Position3D{X: 1.5, Y: 2.5, Z: 3000},
		HasPosition: true,
		Heading:     f64(90),
		Properties:  map[string]string{"IAS": "250", "Label": "lead"},
	}))
	// unknown objects are skipped
	require.NoError(t, m.RecordObjectState(&core.ObjectState{ObjectID: 0xb2, Offset: 1.5}))
	require.NoError(t, m.RecordEvent(&core.Event{
		Offset:    2,
		Kind:      "Destroyed",
		ObjectIDs: []uint64{0xa1},
		Text:      "splash",
	}))
	require.NoError(t, m.RemoveObject(&core.Removal{ObjectID: 0xa1, Offset: 3}))
	require.NoError(t, m.EndRecording())
	require.NoError(t, m.Close())

	out := readBackup(t, cfg.BackupPath)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)

	assert.True(t, strings.HasPrefix(lines[0], MeasurementObjectState+","))
	assert.Contains(t, lines[0], "object=a1")
	assert.Contains(t, lines[0], "type=Air+FixedWing")
	assert.Contains(t, lines[0], "longitude=1.5")
	assert.Contains(t, lines[0], "heading=90")
	assert.Contains(t, lines[0], "IAS=250")
	assert.NotContains(t, lines[0], "Label")
	wantTime := testRecording().ReferenceTime.Add(1500 * time.Millisecond).UnixNano()
	assert.True(t, strings.HasSuffix(lines[0], " "+strconv.FormatInt(wantTime, 10)))

	assert.True(t, strings.HasPrefix(lines[1], MeasurementEvent+","))
	assert.Contains(t, lines[1], "kind=Destroyed")
	assert.Contains(t, lines[1], `objects="a1"`)

	assert.True(t, strings.HasPrefix(lines[2], MeasurementRemoval+","))
	assert.True(t, strings.HasPrefix(lines[3], MeasurementRecording+","))
}

func TestPointTime(t *testing.T) {
	rec := testRecording()
	explicit := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, explicit, pointTime(rec, 10, explicit))
	assert.Equal(t, rec.ReferenceTime.Add(10*time.Second), pointTime(rec, 10, time.Time{}))

	imported := &core.Recording{ImportedAt: explicit}
	assert.Equal(t, explicit.Add(500*time.Millisecond), pointTime(imported, 0.5, time.Time{}))
}

func TestRecordingTag(t *testing.T) {
	assert.Equal(t, "Test", recordingTag(&core.Recording{Title: "Test", SourceFile: "/a/b.acmi"}))
	assert.Equal(t, "b.acmi", recordingTag(&core.Recording{SourceFile: "/a/b.acmi"}))
}

// fakeInflux answers the endpoints the client touches and records write bodies.
type fakeInflux struct {
	mu     sync.Mutex
	writes []string
}

func (f *fakeInflux) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/v2/orgs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"orgs":[{"id":"0000000000000001","name":"acmi"}]}`)
	})
	mux.HandleFunc("/api/v2/buckets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"buckets":[{"id":"0000000000000002","orgID":"0000000000000001","name":"telemetry","retentionRules":[]}]}`)
	})
	mux.HandleFunc("/api/v2/write", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.writes = append(f.writes, string(body))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeInflux) body() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.writes, "\n")
}

func TestLiveWrite(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cfg := config.InfluxConfig{
		Host:       u.Hostname(),
		Port:       u.Port(),
		Protocol:   "http",
		Org:        "acmi",
		Bucket:     "telemetry",
		BackupPath: filepath.Join(t.TempDir(), "unused.lp.gz"),
	}

	m := NewManager(cfg, 10, zerolog.Nop())
	require.NoError(t, m.Init())
	assert.True(t, m.IsValid)
	assert.Nil(t, m.BackupWriter)

	require.NoError(t, m.StartRecording(testRecording()))
	require.NoError(t, m.AddObject(&core.Object{ID: 0xa1, Name: "F-16"}))
	require.NoError(t, m.RecordObjectState(&core.ObjectState{
		ObjectID:    0xa1,
		Offset:      1,
		Position:    core.Position3D{X: 1, Y: 2, Z: 3},
		HasPosition: true,
	}))
	require.NoError(t, m.EndRecording())

	assert.Eventually(t, func() bool {
		return strings.Contains(fake.body(), MeasurementObjectState+",")
	}, 5*time.Second, 50*time.Millisecond)
	assert.Contains(t, fake.body(), MeasurementRecording+",")
	require.NoError(t, m.Close())

	_, err = os.Stat(cfg.BackupPath)
	assert.True(t, os.IsNotExist(err))
}
