// Package ingest imports an ACMI stream into a storage backend. Records are
// parsed, folded into a tracker and routed through a dispatcher whose
// handlers write objects, states and events to the backend.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/OCAP2/acmi/internal/dispatcher"
	"github.com/OCAP2/acmi/internal/logging"
	"github.com/OCAP2/acmi/internal/session"
	"github.com/OCAP2/acmi/internal/storage"
	"github.com/OCAP2/acmi/internal/tracker"
	"github.com/OCAP2/acmi/pkg/acmi"
	"github.com/OCAP2/acmi/pkg/core"
)

// Dispatch kinds.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindRemoved = "removed"
	KindEvent   = "event"
)

// updateQueue bounds the state updates waiting for the backend.
const updateQueue = 256

// Stats summarises one import.
type Stats struct {
	// Records counts records by change kind (global, frame, created, ...).
	Records    map[string]int
	Objects    int
	Frames     int
	Events     int
	LastOffset float64
}

// Dependencies holds what a Service needs.
type Dependencies struct {
	Backend storage.Backend
	// Session is updated as records are read. Optional.
	Session *session.Context
	Logger  *slog.Logger
	// Now stamps Recording.ImportedAt. Defaults to time.Now.
	Now func() time.Time
}

// Service runs imports. A Service may run one import at a time.
type Service struct {
	deps Dependencies
}

// created is the payload for KindCreated.
type created struct {
	object *core.Object
	state  *core.ObjectState
}

// New creates an import service.
func New(deps Dependencies) *Service {
	if deps.Session == nil {
		deps.Session = session.NewContext()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// Ingest reads r to the end and stores it. source names the input in the
// recording and in logs. It stops at the first parse or storage error, or
// when ctx is cancelled; whatever was stored before that is finalized with
// EndRecording. A failed state update is reported when the next object,
// removal or event is reached, or at the end of the stream.
func (s *Service) Ingest(ctx context.Context, r io.Reader, source string) (Stats, error) {
	stats := Stats{Records: make(map[string]int)}

	parser, err := acmi.NewParser(r)
	if err != nil {
		return stats, fmt.Errorf("reading header of %s: %w", source, err)
	}

	d, err := s.newDispatcher()
	if err != nil {
		return stats, err
	}
	defer d.Close()

	imp := &importRun{
		service: s,
		parser:  parser,
		tracker: tracker.New(),
		source:  source,
	}

	err = imp.loop(ctx, d, &stats)
	if drainErr := d.Drain(KindUpdated); drainErr != nil {
		err = errors.Join(err, fmt.Errorf("%s: %s: %w", source, KindUpdated, drainErr))
	}
	if imp.rec == nil {
		if err != nil {
			return stats, err
		}
		// header only
		if startErr := imp.start(); startErr != nil {
			return stats, startErr
		}
	}

	imp.rec.Duration = stats.LastOffset
	if endErr := s.deps.Backend.EndRecording(); endErr != nil {
		err = errors.Join(err, fmt.Errorf("ending recording: %w", endErr))
	}

	attrs := []any{
		"source", source,
		"frames", stats.Frames,
		"objects", stats.Objects,
		"events", stats.Events,
		"duration", stats.LastOffset,
	}
	if err != nil {
		s.deps.Logger.Error("Import failed", append(attrs, "error", err)...)
		return stats, err
	}
	s.deps.Logger.Info("Import finished", attrs...)
	return stats, nil
}

func (s *Service) newDispatcher() (*dispatcher.Dispatcher, error) {
	d, err := dispatcher.New(logging.NewDispatcherLogger(s.deps.Logger))
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	b := s.deps.Backend

	d.Register(KindCreated, func(_ context.Context, e dispatcher.Event) error {
		p := e.Payload.(created)
		if err := b.AddObject(p.object); err != nil {
			return err
		}
		return b.RecordObjectState(p.state)
	}, dispatcher.Logged())

	// Updates are queued; every other kind drains the queue first so the
	// backend sees changes in stream order.
	d.Register(KindUpdated, func(_ context.Context, e dispatcher.Event) error {
		return b.RecordObjectState(e.Payload.(*core.ObjectState))
	}, dispatcher.Buffered(updateQueue), dispatcher.Blocking())

	d.Register(KindRemoved, func(_ context.Context, e dispatcher.Event) error {
		return b.RemoveObject(e.Payload.(*core.Removal))
	}, dispatcher.Logged())

	d.Register(KindEvent, func(_ context.Context, e dispatcher.Event) error {
		return b.RecordEvent(e.Payload.(*core.Event))
	}, dispatcher.Logged())

	return d, nil
}

// importRun is the state of one Ingest call.
type importRun struct {
	service *Service
	parser  *acmi.Parser
	tracker *tracker.Tracker
	source  string
	rec     *core.Recording
}

// start opens the recording once the leading globals have been read.
func (r *importRun) start() error {
	deps := r.service.deps
	r.rec = newRecording(r.source, r.parser.Version(), r.tracker.Globals(), deps.Now())
	if err := deps.Backend.StartRecording(r.rec); err != nil {
		return fmt.Errorf("starting recording: %w", err)
	}
	deps.Session.SetRecording(snapshot(r.rec), r.source)
	deps.Logger.Info("Recording opened", "source", r.source, "title", r.rec.Title, "version", r.rec.FileVersion)
	return nil
}

func (r *importRun) loop(ctx context.Context, d *dispatcher.Dispatcher, stats *Stats) error {
	for rec, err := range r.parser.All() {
		if err != nil {
			return fmt.Errorf("%s: %w", r.source, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		change, err := r.tracker.Apply(rec)
		if err != nil {
			return fmt.Errorf("%s: %w", r.source, err)
		}
		stats.Records[change.Kind.String()]++
		stats.LastOffset = change.Offset

		if change.Kind == tracker.ChangeGlobal {
			if r.rec != nil {
				applyGlobal(r.rec, change.Global)
			}
			r.service.deps.Session.Advance(change.Offset)
			continue
		}
		if r.rec == nil {
			if err := r.start(); err != nil {
				return err
			}
		}
		r.service.deps.Session.Advance(change.Offset)

		if err := r.handle(ctx, d, change, stats); err != nil {
			return err
		}
	}
	return nil
}

func (r *importRun) handle(ctx context.Context, d *dispatcher.Dispatcher, change tracker.Change, stats *Stats) error {
	t := r.tracker.Time()
	e := dispatcher.Event{Offset: change.Offset}

	switch change.Kind {
	case tracker.ChangeFrame:
		stats.Frames++
		return nil
	case tracker.ChangeCreated:
		stats.Objects++
		e.Kind = KindCreated
		e.Payload = created{
			object: toObject(change.Object, t),
			state:  toState(change.Object, change.Properties, change.Offset, t),
		}
	case tracker.ChangeUpdated:
		e.Kind = KindUpdated
		e.Payload = toState(change.Object, change.Properties, change.Offset, t)
	case tracker.ChangeRemoved:
		if change.Object == nil {
			return nil
		}
		e.Kind = KindRemoved
		e.Payload = &core.Removal{ObjectID: change.Object.ID, Offset: change.Offset, Time: t}
	case tracker.ChangeEvent:
		stats.Events++
		e.Kind = KindEvent
		e.Payload = toEvent(change.Event, change.Offset, t)
	default:
		return nil
	}

	if e.Kind != KindUpdated {
		if err := d.Drain(KindUpdated); err != nil {
			return fmt.Errorf("%s before %.2fs: %w", KindUpdated, change.Offset, err)
		}
	}
	if err := d.Dispatch(ctx, e); err != nil {
		return fmt.Errorf("%s at %.2fs: %w", e.Kind, change.Offset, err)
	}
	return nil
}
