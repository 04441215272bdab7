// Package influx writes recordings to InfluxDB as time series, one point per
// object state, falling back to a gzipped line protocol file when the server
// cannot be reached.
package influx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/pkg/core"
	"github.com/klauspost/compress/gzip"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

// Measurement names.
const (
	MeasurementRecording   = "recording"
	MeasurementObjectState = "object_state"
	MeasurementRemoval     = "object_removed"
	MeasurementEvent       = "event"
)

// retentionSeconds is applied to buckets created by the manager.
const retentionSeconds = 60 * 60 * 24 * 90

// ErrNoRecording is returned when data arrives before StartRecording.
var ErrNoRecording = errors.New("no recording started")

// objectTags are the tags attached to every point of an object.
type objectTags struct {
	name      string
	typ       string
	coalition string
}

// Manager handles InfluxDB connections and writes. It implements
// storage.Backend.
type Manager struct {
	cfg       config.InfluxConfig
	batchSize int
	Logger    zerolog.Logger

	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	backupFile   io.Closer
	BackupWriter *gzip.Writer
	IsValid      bool

	mu        sync.Mutex
	recording *core.Recording
	objects   map[uint64]objectTags
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, batchSize int, log zerolog.Logger) *Manager {
	if batchSize <= 0 {
		batchSize = 2500
	}
	return &Manager{
		cfg:       cfg,
		batchSize: batchSize,
		Logger:    log,
		objects:   make(map[uint64]objectTags),
	}
}

// Init connects to InfluxDB, or opens the backup file when the server does
// not answer.
func (m *Manager) Init() error {
	m.Client = influxdb2.NewClientWithOptions(
		m.cfg.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(m.batchSize)).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("backupPath", m.cfg.BackupPath).
			Msg("InfluxDB client failed to initialize, writing to backup file")
		return m.openBackup()
	}

	m.IsValid = true
	if err := m.setupOrganizationAndBucket(); err != nil {
		return err
	}
	m.createWriter()
	m.Logger.Info().Str("url", m.cfg.URL()).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.cfg.BackupPath), 0755); err != nil {
		return fmt.Errorf("error creating backup directory: %w", err)
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket() error {
	ctx := context.Background()
	orgName := m.cfg.Org

	// ensure org exists
	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return fmt.Errorf("error creating organization %s: %w", orgName, err)
		}
	}

	// ensure bucket exists with 90 day retention
	if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("Error creating bucket")
			return fmt.Errorf("error creating bucket %s: %w", m.cfg.Bucket, err)
		}
	}

	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)

	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())
}

// WritePoint writes a point to InfluxDB or to the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		if m.Writer == nil {
			return fmt.Errorf("influxDB writer not initialized")
		}
		m.Writer.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return fmt.Errorf("influxDB client not initialized and backup writer not available")
	}
	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	lineProtocol = strings.TrimSuffix(lineProtocol, "\n") + "\n"
	if _, err := m.BackupWriter.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	var errs []error
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
		errs = append(errs, m.backupFile.Close())
		m.BackupWriter = nil
	}
	return errors.Join(errs...)
}

// StartRecording begins tagging points with the recording title.
func (m *Manager) StartRecording(rec *core.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recording = rec
	m.objects = make(map[uint64]objectTags)
	return nil
}

// EndRecording writes a summary point and flushes.
func (m *Manager) EndRecording() error {
	m.mu.Lock()
	rec := m.recording
	m.recording = nil
	m.mu.Unlock()
	if rec == nil {
		return nil
	}

	point := influxdb2_write.NewPointWithMeasurement(MeasurementRecording).
		AddTag("recording", recordingTag(rec)).
		AddTag("source", rec.SourceFile).
		AddField("duration", rec.Duration).
		AddField("title", rec.Title).
		SetTime(pointTime(rec, rec.Duration, time.Time{}))
	if err := m.WritePoint(point); err != nil {
		return err
	}
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.BackupWriter != nil {
		return m.BackupWriter.Flush()
	}
	return nil
}

// AddObject remembers the object's tags.
func (m *Manager) AddObject(o *core.Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recording == nil {
		return ErrNoRecording
	}
	m.objects[o.ID] = objectTags{
		name:      o.Name,
		typ:       strings.Join(o.Type, "+"),
		coalition: o.Coalition,
	}
	return nil
}

// RecordObjectState writes one point with the object's position and attitude.
func (m *Manager) RecordObjectState(s *core.ObjectState) error {
	m.mu.Lock()
	rec := m.recording
	tags, known := m.objects[s.ObjectID]
	m.mu.Unlock()
	if rec == nil {
		return ErrNoRecording
	}
	if !known {
		return nil
	}

	point := m.objectPoint(MeasurementObjectState, rec, s.ObjectID, tags).
		AddField("offset", s.Offset).
		SetTime(pointTime(rec, s.Offset, s.Time))
	if s.HasPosition {
		point.AddField("longitude", s.Position.X).
			AddField("latitude", s.Position.Y).
			AddField("altitude", s.Position.Z)
	}
	for name, v := range map[string]*float64{
		"roll":    s.Roll, "pitch": s.Pitch, "yaw": s.Yaw,
		"heading": s.Heading, "u": s.U, "v": s.V,
	} {
		if v != nil {
			point.AddField(name, *v)
		}
	}
	for key, value := range s.Properties {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			point.AddField(key, f)
		}
	}
	return m.WritePoint(point)
}

// RemoveObject writes a removal point and forgets the object.
func (m *Manager) RemoveObject(r *core.Removal) error {
	m.mu.Lock()
	rec := m.recording
	tags, known := m.objects[r.ObjectID]
	delete(m.objects, r.ObjectID)
	m.mu.Unlock()
	if rec == nil {
		return ErrNoRecording
	}
	if !known {
		return nil
	}

	point := m.objectPoint(MeasurementRemoval, rec, r.ObjectID, tags).
		AddField("offset", r.Offset).
		SetTime(pointTime(rec, r.Offset, r.Time))
	return m.WritePoint(point)
}

// RecordEvent writes one point per event.
func (m *Manager) RecordEvent(e *core.Event) error {
	m.mu.Lock()
	rec := m.recording
	m.mu.Unlock()
	if rec == nil {
		return ErrNoRecording
	}

	ids := make([]string, 0, len(e.ObjectIDs))
	for _, id := range e.ObjectIDs {
		ids = append(ids, strconv.FormatUint(id, 16))
	}
	point := influxdb2_write.NewPointWithMeasurement(MeasurementEvent).
		AddTag("recording", recordingTag(rec)).
		AddTag("kind", e.Kind).
		AddField("offset", e.Offset).
		AddField("objects", strings.Join(ids, ",")).
		AddField("params", strings.Join(e.Params, "|")).
		AddField("text", e.Text).
		SetTime(pointTime(rec, e.Offset, e.Time))
	return m.WritePoint(point)
}

func (m *Manager) objectPoint(measurement string, rec *core.Recording, id uint64, tags objectTags) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement(measurement).
		AddTag("recording", recordingTag(rec)).
		AddTag("object", strconv.FormatUint(id, 16))
	if tags.name != "" {
		point.AddTag("name", tags.name)
	}
	if tags.typ != "" {
		point.AddTag("type", tags.typ)
	}
	if tags.coalition != "" {
		point.AddTag("coalition", tags.coalition)
	}
	return point
}

func recordingTag(rec *core.Recording) string {
	if rec.Title != "" {
		return rec.Title
	}
	return filepath.Base(rec.SourceFile)
}

// pointTime returns t, or the recording's reference time plus offset when t
// is unknown. Recordings without a reference time are anchored at import time.
func pointTime(rec *core.Recording, offset float64, t time.Time) time.Time {
	if !t.IsZero() {
		return t
	}
	base := rec.ReferenceTime
	if base.IsZero() {
		base = rec.ImportedAt
	}
	return base.Add(time.Duration(offset * float64(time.Second)))
}
