package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angeloszaimis/highlights/internal/deadline"
	"github.com/angeloszaimis/highlights/internal/metrics"
	"github.com/angeloszaimis/highlights/internal/notify"
	"github.com/angeloszaimis/highlights/internal/source"
	"github.com/angeloszaimis/highlights/internal/status"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

type Call[T any] func(ctx context.Context) (Result[T], error)

// Request describes one orchestrated fetch. Name labels logs and metrics
// ("recommended", "search", ...). Threshold is the minimum sequence length
// accepted from the remote source. Lookup marks a fetch by a caller-supplied
// key: an Empty remote answer is then a miss, not a feed failure.
type Request[T any] struct {
	Name      string
	Remote    Call[T]
	Local     Call[T]
	Threshold int
	Notify    bool
	Lookup    bool
}

type Tracker interface {
	ShouldRetry() bool
	RecordSuccess()
	RecordFailure() bool
}

type Guard interface {
	MarkShown() bool
	Reset() bool
}

type Option func(*Orchestrator)

// WithTimeout overrides DefaultTimeout for every call made by the orchestrator.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMetrics sends fetch events to collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *Orchestrator) {
		o.metrics = collector
	}
}

type Orchestrator struct {
	logger  *slog.Logger
	tracker Tracker
	guard   Guard
	events  status.Publisher
	sink    notify.Sink
	metrics *metrics.Collector
	timeout time.Duration
}

func NewOrchestrator(logger *slog.Logger, tracker Tracker, guard Guard, events status.Publisher, sink notify.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:  logger,
		tracker: tracker,
		guard:   guard,
		events:  events,
		sink:    sink,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *Orchestrator) Timeout() time.Duration {
	return o.timeout
}

// Fetch runs req against the remote source if the tracker allows it and
// returns the remote result when it is good enough, the local result otherwise.
func Fetch[T any](ctx context.Context, o *Orchestrator, req Request[T]) (Result[T], error) {
	if !o.tracker.ShouldRetry() {
		o.logger.Debug("Remote feed skipped by circuit tracker, using fallback",
			slog.String("query", req.Name))
		o.emit(metrics.FetchEvent{Type: metrics.EventRemoteSkipped, Query: req.Name})
		return serveLocal(ctx, o, req)
	}

	o.emit(metrics.FetchEvent{Type: metrics.EventRemoteAttempt, Query: req.Name})

	start := time.Now()
	res, err := deadline.Race[Result[T]](ctx, o.timeout, req.Remote)
	elapsed := time.Since(start)

	if err != nil {
		o.remoteFailed(ctx, req.Name, req.Notify, err, elapsed)
		return serveLocal(ctx, o, req)
	}

	if req.Lookup && res.Shape() == ShapeEmpty {
		o.lookupMissed(req.Name, elapsed)
		return serveLocal(ctx, o, req)
	}

	if res.satisfies(req.Threshold) {
		o.remoteSucceeded(ctx, req.Name, req.Notify, res.Len(), elapsed)
		return res, nil
	}

	o.remoteInsufficient(ctx, req.Name, req.Notify, res.Shape(), res.Len(), req.Threshold, elapsed)
	return serveLocal(ctx, o, req)
}

func serveLocal[T any](ctx context.Context, o *Orchestrator, req Request[T]) (Result[T], error) {
	res, err := req.Local(ctx)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, source.ErrNotFound) {
			level = slog.LevelDebug
		}
		o.logger.Log(ctx, level, "Local fallback failed",
			slog.String("query", req.Name),
			slog.Any("err", err))
		return Result[T]{}, fmt.Errorf("local %s: %w", req.Name, err)
	}

	o.emit(metrics.FetchEvent{Type: metrics.EventFallbackServed, Query: req.Name})
	return res, nil
}

func (o *Orchestrator) remoteSucceeded(ctx context.Context, name string, notifyUser bool, count int, elapsed time.Duration) {
	// Reset before RecordSuccess so exactly one caller sees the streak end.
	recovered := o.guard.Reset()
	o.tracker.RecordSuccess()

	o.logger.Debug("Remote feed fetch succeeded",
		slog.String("query", name),
		slog.Int("items", count),
		slog.Duration("elapsed", elapsed))
	o.emit(metrics.FetchEvent{Type: metrics.EventRemoteSuccess, Query: name, Duration: elapsed})

	if notifyUser && recovered {
		o.notify(ctx, recoveredNotification())
	}
}

// lookupMissed leaves the tracker and the guard alone: the feed answered.
func (o *Orchestrator) lookupMissed(name string, elapsed time.Duration) {
	o.logger.Debug("Remote feed does not have the requested item, trying fallback",
		slog.String("query", name))
	o.emit(metrics.FetchEvent{Type: metrics.EventRemoteMiss, Query: name, Duration: elapsed})
}

func (o *Orchestrator) remoteInsufficient(ctx context.Context, name string, notifyUser bool, shape Shape, count, threshold int, elapsed time.Duration) {
	o.logger.Warn("Remote feed returned too little data, using fallback",
		slog.String("query", name),
		slog.String("shape", shape.String()),
		slog.Int("items", count),
		slog.Int("threshold", threshold))
	o.emit(metrics.FetchEvent{
		Type:     metrics.EventRemoteFailure,
		Query:    name,
		Category: string(CategoryInsufficient),
		Duration: elapsed,
	})

	o.recordFailure(name)

	if notifyUser && o.guard.MarkShown() {
		o.notify(ctx, notificationFor(CategoryInsufficient))
		o.events.Publish(status.Failed(fmt.Sprintf("%s: insufficient data from remote feed", name)))
	}
}

func (o *Orchestrator) remoteFailed(ctx context.Context, name string, notifyUser bool, err error, elapsed time.Duration) {
	// The caller went away; the remote source is not to blame.
	if ctx.Err() != nil {
		o.logger.Debug("Fetch cancelled by caller, using fallback",
			slog.String("query", name),
			slog.Any("err", err))
		return
	}

	category := Classify(err)

	o.logger.Warn("Remote feed fetch failed, using fallback",
		slog.String("query", name),
		slog.String("category", string(category)),
		slog.Any("err", err))
	o.emit(metrics.FetchEvent{
		Type:     metrics.EventRemoteFailure,
		Query:    name,
		Category: string(category),
		Duration: elapsed,
	})

	o.recordFailure(name)

	n := notificationFor(category)
	if notifyUser && o.guard.MarkShown() {
		o.notify(ctx, n)
	}
	// Listeners get the category, never the raw error.
	o.events.Publish(status.Failed(fmt.Sprintf("%s: %s", name, n.Title)))
}

func (o *Orchestrator) recordFailure(name string) {
	if o.tracker.RecordFailure() {
		o.logger.Warn("Remote feed disabled after repeated failures",
			slog.String("query", name))
	}
}

func (o *Orchestrator) notify(ctx context.Context, n notify.Notification) {
	if err := o.sink.Notify(ctx, n); err != nil {
		o.logger.Debug("Notification not delivered",
			slog.String("title", n.Title),
			slog.Any("err", err))
	}
}

func (o *Orchestrator) emit(event metrics.FetchEvent) {
	if o.metrics == nil {
		return
	}

	event.Timestamp = time.Now()
	o.metrics.Emit(event)
}
