package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRemoteAttempt  EventType = "remote_attempt"
	EventRemoteSuccess  EventType = "remote_success"
	EventRemoteFailure  EventType = "remote_failure"
	EventRemoteSkipped  EventType = "remote_skipped"
	EventFallbackServed EventType = "fallback_served"
	EventRemoteMiss     EventType = "remote_miss"
	EventHealthChanged  EventType = "health_changed"
)

type FetchEvent struct {
	Type      EventType
	Timestamp time.Time
	Query     string
	Endpoint  string
	Category  string
	Duration  time.Duration
	Healthy   bool
}

type Collector struct {
	eventCh chan FetchEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan FetchEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- FetchEvent {
	return c.eventCh
}

// Emit queues event without blocking. Events are dropped when the buffer is full.
func (c *Collector) Emit(event FetchEvent) {
	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event FetchEvent) {
	switch event.Type {
	case EventRemoteAttempt:
		c.metrics.RecordAttempt(event.Query)

	case EventRemoteSuccess:
		c.metrics.RecordSuccess(event.Query, event.Duration)

	case EventRemoteFailure:
		c.metrics.RecordFailure(event.Query, event.Category, event.Duration)

	case EventRemoteSkipped:
		c.metrics.RecordSkipped(event.Query)

	case EventFallbackServed:
		c.metrics.RecordFallback(event.Query)

	case EventRemoteMiss:
		c.metrics.RecordMiss(event.Query, event.Duration)

	case EventHealthChanged:
		c.metrics.UpdateEndpointHealth(event.Endpoint, event.Healthy)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot(strategy string) Snapshot {
	return c.metrics.Snapshot(strategy)
}
