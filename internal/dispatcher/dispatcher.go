// Package dispatcher routes decoded telemetry to the handlers registered for
// each kind of change.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Errors returned by Dispatch.
var (
	ErrUnknownKind = errors.New("no handler registered")
	ErrQueueFull   = errors.New("queue full")
	ErrClosed      = errors.New("dispatcher closed")
)

// Event carries one change to its handler. Payload is owned by the handler
// once dispatched and must not be mutated by the sender.
type Event struct {
	Kind      string
	Offset    float64
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event.
type HandlerFunc func(context.Context, Event) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to registered handlers. Register must not be
// called concurrently with Dispatch.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	failed    metric.Int64Counter

	registration metric.Registration

	mu      sync.RWMutex
	buffers map[string]*queue
	closed  bool
	wg      sync.WaitGroup
}

// queue is the backlog of a buffered handler. pending counts changes that
// were accepted but not yet handled; err holds the first handler failure
// since the last Drain.
type queue struct {
	ch      chan Event
	pending sync.WaitGroup

	errMu sync.Mutex
	err   error
}

func (q *queue) fail(err error) {
	q.errMu.Lock()
	defer q.errMu.Unlock()
	if q.err == nil {
		q.err = err
	}
}

func (q *queue) takeErr() error {
	q.errMu.Lock()
	defer q.errMu.Unlock()
	err := q.err
	q.err = nil
	return err
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]*queue),
		logger:   logger,
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Current number of changes waiting in a handler queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	d.registration, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for kind, q := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(q.ch)),
					metric.WithAttributes(attribute.String("kind", kind)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	if d.processed, err = m.Int64Counter(
		"dispatcher.changes.processed",
		metric.WithDescription("Total changes handled"),
	); err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	if d.dropped, err = m.Int64Counter(
		"dispatcher.changes.dropped",
		metric.WithDescription("Total changes dropped due to full queue"),
	); err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	if d.failed, err = m.Int64Counter(
		"dispatcher.changes.failed",
		metric.WithDescription("Total changes whose handler returned an error"),
	); err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given kind with optional configuration.
func (d *Dispatcher) Register(kind string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = d.withLogging(kind, handler)
	}

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(kind, cfg.bufferSize, cfg.blocking, handler)
	}

	d.handlers[kind] = handler
}

// Dispatch routes an event to its registered handler. Buffered handlers
// return as soon as the event is queued.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) error {
	h, ok := d.handlers[e.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(ctx, e)
}

// Drain blocks until every change queued for a buffered kind has been
// handled and returns the first handler error seen since the previous Drain.
// It returns nil at once for kinds that are not buffered. Drain must not run
// concurrently with Dispatch for the same kind.
func (d *Dispatcher) Drain(kind string) error {
	d.mu.RLock()
	q, ok := d.buffers[kind]
	d.mu.RUnlock()
	if !ok {
		return nil
	}
	q.pending.Wait()
	return q.takeErr()
}

// Close stops accepting buffered events, waits until every queued event
// has been handled and detaches the queue gauge from the meter.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.buffers {
		close(q.ch)
	}
	d.mu.Unlock()
	d.wg.Wait()

	if err := d.registration.Unregister(); err != nil {
		d.logger.Error("unregistering queue gauge", "error", err)
	}
}

func (d *Dispatcher) withBuffer(kind string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	q := &queue{ch: make(chan Event, size)}

	d.mu.Lock()
	d.buffers[kind] = q
	d.mu.Unlock()

	kindAttr := metric.WithAttributes(attribute.String("kind", kind))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for e := range q.ch {
			if err := h(context.Background(), e); err != nil {
				d.failed.Add(context.Background(), 1, kindAttr)
				d.logger.Error("queued change failed", "kind", kind, "offset", e.Offset, "error", err)
				q.fail(err)
			}
			d.processed.Add(context.Background(), 1, kindAttr)
			q.pending.Done()
		}
	}()

	return func(ctx context.Context, e Event) error {
		// Holding the read lock keeps Close from closing the channel mid-send.
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.closed {
			return ErrClosed
		}

		q.pending.Add(1)
		if blocking {
			select {
			case q.ch <- e:
				return nil
			case <-ctx.Done():
				q.pending.Done()
				return ctx.Err()
			}
		}

		select {
		case q.ch <- e:
			return nil
		default:
			q.pending.Done()
			d.dropped.Add(ctx, 1, kindAttr)
			return fmt.Errorf("%w: %s", ErrQueueFull, kind)
		}
	}
}

func (d *Dispatcher) withLogging(kind string, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, e Event) error {
		start := time.Now()
		d.logger.Debug("handling change", "kind", kind, "offset", e.Offset)

		err := h(ctx, e)

		if err != nil {
			d.logger.Error("change failed", "kind", kind, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("change complete", "kind", kind, "duration", time.Since(start))
		}

		return err
	}
}
